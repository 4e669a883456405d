package stor

import (
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

// Lookups that find nothing return an error matching gorm.ErrRecordNotFound, for the
// in-memory stors too.

type UserStor interface {
	CreateUser(user *odemodel.User) (*odemodel.User, error)
	GetUserByID(userID int) (*odemodel.User, error)
	GetUserByAPIToken(apitoken string) (*odemodel.User, error)
}

type ProjectStor interface {
	// CreateProject creates the project and its files in one transaction. A name
	// already used by the owner fails with gorm.ErrDuplicatedKey.
	CreateProject(project *odemodel.Project, files []odemodel.ProjectFile) (*odemodel.Project, error)
	GetProjectByID(projectID int64) (*odemodel.Project, error)
	GetProjectByOwnerAndName(ownerID int, name string) (*odemodel.Project, error)
}

type ProjectFileStor interface {
	// PutProjectFile creates or replaces the file at file.Path, updating the project's
	// size and modification time. It returns the record that was replaced, if any.
	PutProjectFile(file *odemodel.ProjectFile) (*odemodel.ProjectFile, error)
	GetProjectFileByPath(projectID int64, path string) (*odemodel.ProjectFile, error)
}

type UserFileStor interface {
	PutUserFile(file *odemodel.UserFile) (*odemodel.UserFile, error)
	GetUserFileByPath(ownerID int, path string) (*odemodel.UserFile, error)
}

type TempFileStor interface {
	CreateTempFile(file *odemodel.TempFile) (*odemodel.TempFile, error)
}

type GlobalAssetStor interface {
	CreateGlobalAsset(asset *odemodel.GlobalAsset) (*odemodel.GlobalAsset, error)
}

type Stors struct {
	UserStor        UserStor
	ProjectStor     ProjectStor
	ProjectFileStor ProjectFileStor
	UserFileStor    UserFileStor
	TempFileStor    TempFileStor
	GlobalAssetStor GlobalAssetStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		UserStor:        NewGormUserStor(db),
		ProjectStor:     NewGormProjectStor(db),
		ProjectFileStor: NewGormProjectFileStor(db),
		UserFileStor:    NewGormUserFileStor(db),
		TempFileStor:    NewGormTempFileStor(db),
		GlobalAssetStor: NewGormGlobalAssetStor(db),
	}
}

// NewInMemoryStors wires the in-memory stors together so project files see the
// projects they belong to.
func NewInMemoryStors(users []odemodel.User, projects []odemodel.Project) *Stors {
	projectStor := NewInMemoryProjectStor(projects)
	return &Stors{
		UserStor:        NewInMemoryUserStor(users),
		ProjectStor:     projectStor,
		ProjectFileStor: projectStor,
		UserFileStor:    NewInMemoryUserFileStor(),
		TempFileStor:    NewInMemoryTempFileStor(),
		GlobalAssetStor: NewInMemoryGlobalAssetStor(),
	}
}
