package odemodel

import "time"

// UserFile is a per-user file outside any project, such as a signing keystore.
type UserFile struct {
	ID        int       `json:"id"`
	UUID      string    `json:"uuid"`
	OwnerID   int       `json:"owner_id" gorm:"uniqueIndex:idx_user_file_path"`
	Path      string    `json:"path" gorm:"uniqueIndex:idx_user_file_path;size:512"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f UserFile) ToUnderlyingFilePath(root string) string {
	return BlobPath(root, f.UUID)
}

// TempFilePrefix marks ids handed out for temporary uploads.
const TempFilePrefix = "__TEMP__/"

type TempFile struct {
	ID        int       `json:"id"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;size:64"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (f TempFile) TempID() string {
	return TempFilePrefix + f.UUID
}

func (f TempFile) ToUnderlyingFilePath(root string) string {
	return BlobPath(root, f.UUID)
}

type GlobalAsset struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	OwnerID   int       `json:"owner_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:255"`
	Type      string    `json:"type"`
	Folder    string    `json:"folder"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a GlobalAsset) ToUnderlyingFilePath(root string) string {
	return BlobPath(root, a.UUID)
}
