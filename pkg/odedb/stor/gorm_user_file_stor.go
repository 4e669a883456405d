package stor

import (
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

type GormUserFileStor struct {
	db *gorm.DB
}

func NewGormUserFileStor(db *gorm.DB) *GormUserFileStor {
	return &GormUserFileStor{db: db}
}

func (s *GormUserFileStor) PutUserFile(file *odemodel.UserFile) (*odemodel.UserFile, error) {
	var replaced *odemodel.UserFile

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		replaced = nil

		var existing odemodel.UserFile
		err := tx.Where("owner_id = ? AND path = ?", file.OwnerID, file.Path).First(&existing).Error
		switch {
		case err == nil:
			old := existing
			replaced = &old
			file.ID = existing.ID
			file.CreatedAt = existing.CreatedAt
			return tx.Save(file).Error
		case isNotFound(err):
			return tx.Create(file).Error
		default:
			return err
		}
	})

	if err != nil {
		return nil, err
	}

	return replaced, nil
}

func (s *GormUserFileStor) GetUserFileByPath(ownerID int, path string) (*odemodel.UserFile, error) {
	var file odemodel.UserFile
	if err := s.db.Where("owner_id = ? AND path = ?", ownerID, path).First(&file).Error; err != nil {
		return nil, err
	}

	return &file, nil
}
