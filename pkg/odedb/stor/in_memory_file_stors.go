package stor

import (
	"fmt"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

type InMemoryUserFileStor struct {
	mu    sync.Mutex
	files []odemodel.UserFile
}

func NewInMemoryUserFileStor() *InMemoryUserFileStor {
	return &InMemoryUserFileStor{}
}

func (s *InMemoryUserFileStor) PutUserFile(file *odemodel.UserFile) (*odemodel.UserFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file.UpdatedAt = time.Now()
	for i := range s.files {
		if s.files[i].OwnerID == file.OwnerID && s.files[i].Path == file.Path {
			replaced := s.files[i]
			file.ID = replaced.ID
			file.CreatedAt = replaced.CreatedAt
			s.files[i] = *file
			return &replaced, nil
		}
	}

	file.ID = len(s.files) + 1
	file.CreatedAt = file.UpdatedAt
	s.files = append(s.files, *file)
	return nil, nil
}

func (s *InMemoryUserFileStor) GetUserFileByPath(ownerID int, path string) (*odemodel.UserFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.OwnerID == ownerID && f.Path == path {
			return &f, nil
		}
	}

	return nil, fmt.Errorf("no user file %q: %w", path, gorm.ErrRecordNotFound)
}

type InMemoryTempFileStor struct {
	mu    sync.Mutex
	Files []odemodel.TempFile
}

func NewInMemoryTempFileStor() *InMemoryTempFileStor {
	return &InMemoryTempFileStor{}
}

func (s *InMemoryTempFileStor) CreateTempFile(file *odemodel.TempFile) (*odemodel.TempFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file.ID = len(s.Files) + 1
	file.CreatedAt = time.Now()
	s.Files = append(s.Files, *file)
	return file, nil
}

type InMemoryGlobalAssetStor struct {
	mu     sync.Mutex
	Assets []odemodel.GlobalAsset
}

func NewInMemoryGlobalAssetStor() *InMemoryGlobalAssetStor {
	return &InMemoryGlobalAssetStor{}
}

func (s *InMemoryGlobalAssetStor) CreateGlobalAsset(asset *odemodel.GlobalAsset) (*odemodel.GlobalAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	asset.ID = int64(len(s.Assets) + 1)
	asset.Slug = fmt.Sprintf("%s-%d", slug.Make(asset.Name), asset.ID)
	asset.CreatedAt = now
	asset.UpdatedAt = now
	s.Assets = append(s.Assets, *asset)
	return asset, nil
}
