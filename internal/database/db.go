package database

import (
	"sync"
	"time"

	"judge-qna/config"
	"judge-qna/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var (
	db *gorm.DB
	mu sync.Mutex
)

// connect opens the DB and applies pool configuration.
func connect() (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(config.Cfg.Dns), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(config.Cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.Cfg.Database.MaxOpenConns)
	lifetime := time.Duration(config.Cfg.Database.MaxLifetime) * time.Minute
	sqlDB.SetConnMaxIdleTime(lifetime)
	sqlDB.SetConnMaxLifetime(lifetime)

	return conn, nil
}

// ensureConnection connects lazily and reconnects when the current
// handle no longer responds to ping.
func ensureConnection() error {
	if db == nil {
		conn, err := connect()
		if err != nil {
			logger.Error(err, "%v: failed to connect", config.ModuleDatabase)
			return err
		}
		db = conn
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error(err, "%v: failed to get underlying connection", config.ModuleDatabase)
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		conn, err := connect()
		if err != nil {
			logger.Error(err, "%v: reconnect failed", config.ModuleDatabase)
			return err
		}
		db = conn
	}
	return nil
}

// GetDB returns a healthy *gorm.DB, attempting reconnect if necessary.
func GetDB() (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := ensureConnection(); err != nil {
		return nil, err
	}
	return db, nil
}
