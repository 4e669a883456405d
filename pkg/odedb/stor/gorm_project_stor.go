package stor

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/hashicorp/go-uuid"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

type GormProjectStor struct {
	db *gorm.DB
}

func NewGormProjectStor(db *gorm.DB) *GormProjectStor {
	return &GormProjectStor{db: db}
}

func (s *GormProjectStor) CreateProject(project *odemodel.Project, files []odemodel.ProjectFile) (*odemodel.Project, error) {
	var err error

	if project.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	slugOfName := slug.Make(project.Name)

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&odemodel.Project{}).
			Where("owner_id = ? AND name = ?", project.OwnerID, project.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count != 0 {
			return gorm.ErrDuplicatedKey
		}

		// Slugs are global, so another user's project may already hold this one. Add an
		// incrementing integer to the slug and try again.
		project.Slug = slugOfName
		slugNext := 1
		for {
			var existing int64
			if err := tx.Model(&odemodel.Project{}).Where("slug = ?", project.Slug).Count(&existing).Error; err != nil {
				return err
			}

			if existing == 0 {
				break
			}

			project.Slug = fmt.Sprintf("%s-%d", slugOfName, slugNext)
			slugNext++
		}

		project.ID = 0
		project.Size = 0
		project.FileCount = len(files)
		for _, f := range files {
			project.Size += f.Size
		}

		if err := tx.Create(project).Error; err != nil {
			return err
		}

		for i := range files {
			files[i].ID = 0
			files[i].ProjectID = project.ID
			files[i].OwnerID = project.OwnerID
		}

		if len(files) == 0 {
			return nil
		}

		return tx.Create(&files).Error
	})

	if err != nil {
		return nil, err
	}

	return project, nil
}

func (s *GormProjectStor) GetProjectByID(projectID int64) (*odemodel.Project, error) {
	var project odemodel.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func (s *GormProjectStor) GetProjectByOwnerAndName(ownerID int, name string) (*odemodel.Project, error) {
	var project odemodel.Project
	err := s.db.Where("owner_id = ?", ownerID).Where("name = ?", name).First(&project).Error
	if err != nil {
		return nil, err
	}

	return &project, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
