// Package testutil opens throwaway databases for repository and handler tests.
package testutil

import (
	employeeDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/employee"
	eventDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/event"
	timerecordDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/timerecord"
	userDatamodel "github.com/eventstaff/attendance/internal/core/datamodel/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns an in-memory database with every table migrated.
// The pool is pinned to one connection because each sqlite :memory:
// connection is a separate database.
func NewSQLiteDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&eventDatamodel.Event{},
		&employeeDatamodel.Employee{},
		&timerecordDatamodel.TimeRecord{},
		&userDatamodel.User{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
