package database

import (
	"fmt"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenMemory opens a named in-memory SQLite database shared by every
// connection of the returned handle. Used by tests and local tooling.
func OpenMemory(name string) (*gorm.DB, error) {
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		}),
		&gorm.Config{
			Logger:                                   logger.Default.LogMode(logger.Silent),
			TranslateError:                           true,
			DisableForeignKeyConstraintWhenMigrating: true,
		},
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
