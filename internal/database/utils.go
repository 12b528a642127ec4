package database

import (
	"context"

	"gorm.io/gorm"
)

// CreateEntity creates a record for the provided entity type.
func CreateEntity[T any](ctx context.Context, entity *T) error {
	conn, err := GetDB()
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).Create(entity).Error
}

// GetEntityByID returns a single record of type T by its primary key id.
func GetEntityByID[T any, ID comparable](ctx context.Context, id ID) (*T, error) {
	conn, err := GetDB()
	if err != nil {
		return nil, err
	}
	var out T
	if err := conn.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEntityByID updates columns of type T where primary key equals id.
func UpdateEntityByID[T any, ID comparable](ctx context.Context, id ID, updates map[string]interface{}) error {
	conn, err := GetDB()
	if err != nil {
		return err
	}
	var zero T
	return conn.WithContext(ctx).Model(&zero).Where("id = ?", id).Updates(updates).Error
}

// DeleteEntityByID deletes a record of type T by its primary key id.
func DeleteEntityByID[T any, ID comparable](ctx context.Context, id ID) error {
	conn, err := GetDB()
	if err != nil {
		return err
	}
	var zero T
	return conn.WithContext(ctx).Where("id = ?", id).Delete(&zero).Error
}

// WithTx runs fn within a transaction on the shared DB.
func WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	conn, err := GetDB()
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).Transaction(fn)
}
