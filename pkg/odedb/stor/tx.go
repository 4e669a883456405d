package stor

import (
	"errors"

	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/config"
	"gorm.io/gorm"
)

// WithTxRetry runs fn in a transaction, retrying on failure. Constraint violations
// are returned immediately since retrying can't fix them.
func WithTxRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error

	retryCount := config.GetTxRetry()

	for i := 0; i < retryCount; i++ {
		err = db.Transaction(fn)
		if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
	}

	return err
}
