package stor

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

type GormGlobalAssetStor struct {
	db *gorm.DB
}

func NewGormGlobalAssetStor(db *gorm.DB) *GormGlobalAssetStor {
	return &GormGlobalAssetStor{db: db}
}

// CreateGlobalAsset stores asset under a unique slug derived from its name.
func (s *GormGlobalAssetStor) CreateGlobalAsset(asset *odemodel.GlobalAsset) (*odemodel.GlobalAsset, error) {
	slugOfName := slug.Make(asset.Name)

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		asset.ID = 0
		asset.Slug = slugOfName
		slugNext := 1
		for {
			var count int64
			if err := tx.Model(&odemodel.GlobalAsset{}).Where("slug = ?", asset.Slug).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				break
			}

			asset.Slug = fmt.Sprintf("%s-%d", slugOfName, slugNext)
			slugNext++
		}

		return tx.Create(asset).Error
	})

	if err != nil {
		return nil, err
	}

	return asset, nil
}
