package odemodel

import "time"

// ProjectPropertiesPath is the entry every project archive must carry.
const ProjectPropertiesPath = "youngandroidproject/project.properties"

type Project struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:255"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_project_owner_name;size:255"`
	OwnerID   int       `json:"owner_id" gorm:"uniqueIndex:idx_project_owner_name"`
	Owner     *User     `json:"-" gorm:"foreignKey:OwnerID;references:ID"`
	Size      int64     `json:"size"`
	FileCount int       `json:"file_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectDescriptor is what a successful project import reports back to the client.
type ProjectDescriptor struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Created  int64  `json:"created"`
	Modified int64  `json:"modified"`
}

func (p Project) ToDescriptor() ProjectDescriptor {
	return ProjectDescriptor{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Created:  p.CreatedAt.UnixMilli(),
		Modified: p.UpdatedAt.UnixMilli(),
	}
}

type ProjectFile struct {
	ID        int       `json:"id"`
	UUID      string    `json:"uuid"`
	ProjectID int64     `json:"project_id" gorm:"uniqueIndex:idx_project_file_path"`
	OwnerID   int       `json:"owner_id"`
	Path      string    `json:"path" gorm:"uniqueIndex:idx_project_file_path;size:512"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f ProjectFile) ToUnderlyingFilePath(root string) string {
	return BlobPath(root, f.UUID)
}

// ModTime is the modification time reported to clients, in milliseconds.
func (f ProjectFile) ModTime() int64 {
	return f.UpdatedAt.UnixMilli()
}
