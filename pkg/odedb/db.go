package odedb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/lakshyashishir/appinventor-sources/pkg/config"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func MakeDSNFromEnv() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USERNAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_DATABASE"))
}

const maxDBRetries = 5

var retryDelay = 3 * time.Second

// Dialector picks the database from ODE_DB_DRIVER. sqlite is the default and keeps
// its file under the storage directory unless ODE_SQLITE_PATH says otherwise.
func Dialector(cfg config.Configer, storageDir string) (gorm.Dialector, error) {
	switch driver := cfg.GetKeyWithDefault("ODE_DB_DRIVER", "sqlite"); driver {
	case "mysql":
		return mysql.Open(MakeDSNFromEnv()), nil
	case "sqlite":
		path := cfg.GetKeyWithDefault("ODE_SQLITE_PATH", filepath.Join(storageDir, "ode.db"))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, "unable to create directory for %s", path)
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unknown ODE_DB_DRIVER %q", driver)
	}
}

// MustConnectToDB will attempt to connect to the database maxDBRetries times, sleeping
// between attempts. If it still can't connect it calls log.Fatalf(), which exits.
// The schema is migrated once connected.
func MustConnectToDB(dialector gorm.Dialector) *gorm.DB {
	var (
		err error
		db  *gorm.DB
	)

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	retryCount := 1
	for {
		db, err = gorm.Open(dialector, gormConfig)
		switch {
		case err == nil:
			if err := Migrate(db); err != nil {
				log.Fatalf("Failed to migrate db (%s): %s", dialector.Name(), err)
			}
			return db
		case retryCount >= maxDBRetries:
			log.Fatalf("Failed to open db (%s): %s", dialector.Name(), err)
		default:
			retryCount++
			time.Sleep(retryDelay)
		}
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(odemodel.Models()...)
}
