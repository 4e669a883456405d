package stor

import (
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

type GormProjectFileStor struct {
	db *gorm.DB
}

func NewGormProjectFileStor(db *gorm.DB) *GormProjectFileStor {
	return &GormProjectFileStor{db: db}
}

func (s *GormProjectFileStor) PutProjectFile(file *odemodel.ProjectFile) (*odemodel.ProjectFile, error) {
	var replaced *odemodel.ProjectFile

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		replaced = nil

		var project odemodel.Project
		if err := tx.First(&project, file.ProjectID).Error; err != nil {
			return err
		}

		var existing odemodel.ProjectFile
		err := tx.Where("project_id = ? AND path = ?", file.ProjectID, file.Path).First(&existing).Error
		switch {
		case err == nil:
			old := existing
			replaced = &old
			file.ID = existing.ID
			file.CreatedAt = existing.CreatedAt
			if err := tx.Save(file).Error; err != nil {
				return err
			}
			project.Size += file.Size - existing.Size
		case isNotFound(err):
			if err := tx.Create(file).Error; err != nil {
				return err
			}
			project.Size += file.Size
			project.FileCount++
		default:
			return err
		}

		// The project's modification time follows its newest file.
		return tx.Model(&project).Updates(map[string]interface{}{
			"size":       project.Size,
			"file_count": project.FileCount,
			"updated_at": file.UpdatedAt,
		}).Error
	})

	if err != nil {
		return nil, err
	}

	return replaced, nil
}

func (s *GormProjectFileStor) GetProjectFileByPath(projectID int64, path string) (*odemodel.ProjectFile, error) {
	var file odemodel.ProjectFile
	if err := s.db.Where("project_id = ? AND path = ?", projectID, path).First(&file).Error; err != nil {
		return nil, err
	}

	return &file, nil
}
