package stor

import (
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

type GormTempFileStor struct {
	db *gorm.DB
}

func NewGormTempFileStor(db *gorm.DB) *GormTempFileStor {
	return &GormTempFileStor{db: db}
}

func (s *GormTempFileStor) CreateTempFile(file *odemodel.TempFile) (*odemodel.TempFile, error) {
	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(file).Error
	})

	if err != nil {
		return nil, err
	}

	return file, nil
}
