package database

import (
	"errors"

	"judge-qna/internal/database/model"

	"gorm.io/gorm"
)

const defaultUserEmail = "default@local"

// EnsureDefaultUser finds or creates the default user and returns its ID.
func EnsureDefaultUser(conn *gorm.DB) (int64, error) {
	if conn == nil {
		return 0, errors.New("nil db")
	}
	var u model.User
	err := conn.Where("email = ?", defaultUserEmail).First(&u).Error
	if err == nil {
		return u.ID, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		newUser := model.User{Email: defaultUserEmail}
		if e := conn.Create(&newUser).Error; e != nil {
			return 0, e
		}
		return newUser.ID, nil
	}
	return 0, err
}
