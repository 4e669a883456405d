package stor

import (
	"fmt"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

// InMemoryProjectStor keeps projects and their files. It implements both ProjectStor
// and ProjectFileStor.
type InMemoryProjectStor struct {
	mu       sync.Mutex
	projects []odemodel.Project
	files    []odemodel.ProjectFile
	now      func() time.Time
}

func NewInMemoryProjectStor(projects []odemodel.Project) *InMemoryProjectStor {
	return &InMemoryProjectStor{projects: projects, now: time.Now}
}

func (s *InMemoryProjectStor) CreateProject(project *odemodel.Project, files []odemodel.ProjectFile) (*odemodel.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.OwnerID == project.OwnerID && p.Name == project.Name {
			return nil, fmt.Errorf("project %q: %w", project.Name, gorm.ErrDuplicatedKey)
		}
	}

	now := s.now()
	project.ID = int64(len(s.projects) + 1)
	project.Slug = fmt.Sprintf("%s-%d", slug.Make(project.Name), project.ID)
	project.CreatedAt = now
	project.UpdatedAt = now
	project.FileCount = len(files)
	project.Size = 0

	for i := range files {
		files[i].ID = len(s.files) + 1
		files[i].ProjectID = project.ID
		files[i].OwnerID = project.OwnerID
		files[i].CreatedAt = now
		files[i].UpdatedAt = now
		project.Size += files[i].Size
		s.files = append(s.files, files[i])
	}

	s.projects = append(s.projects, *project)
	return project, nil
}

func (s *InMemoryProjectStor) GetProjectByID(projectID int64) (*odemodel.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.projectIndex(projectID); i != -1 {
		p := s.projects[i]
		return &p, nil
	}

	return nil, fmt.Errorf("no such project %d: %w", projectID, gorm.ErrRecordNotFound)
}

func (s *InMemoryProjectStor) GetProjectByOwnerAndName(ownerID int, name string) (*odemodel.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.OwnerID == ownerID && p.Name == name {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("no project %q for user %d: %w", name, ownerID, gorm.ErrRecordNotFound)
}

func (s *InMemoryProjectStor) PutProjectFile(file *odemodel.ProjectFile) (*odemodel.ProjectFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pi := s.projectIndex(file.ProjectID)
	if pi == -1 {
		return nil, fmt.Errorf("no such project %d: %w", file.ProjectID, gorm.ErrRecordNotFound)
	}

	// Keep modification times strictly increasing so clients see every save.
	now := s.now()
	if !now.After(s.projects[pi].UpdatedAt) {
		now = s.projects[pi].UpdatedAt.Add(time.Millisecond)
	}

	file.UpdatedAt = now
	project := &s.projects[pi]
	project.UpdatedAt = now

	for i := range s.files {
		if s.files[i].ProjectID == file.ProjectID && s.files[i].Path == file.Path {
			replaced := s.files[i]
			file.ID = replaced.ID
			file.CreatedAt = replaced.CreatedAt
			s.files[i] = *file
			project.Size += file.Size - replaced.Size
			return &replaced, nil
		}
	}

	file.ID = len(s.files) + 1
	file.CreatedAt = now
	s.files = append(s.files, *file)
	project.Size += file.Size
	project.FileCount++
	return nil, nil
}

func (s *InMemoryProjectStor) GetProjectFileByPath(projectID int64, path string) (*odemodel.ProjectFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.ProjectID == projectID && f.Path == path {
			return &f, nil
		}
	}

	return nil, fmt.Errorf("no file %q in project %d: %w", path, projectID, gorm.ErrRecordNotFound)
}

func (s *InMemoryProjectStor) projectIndex(projectID int64) int {
	for i := range s.projects {
		if s.projects[i].ID == projectID {
			return i
		}
	}

	return -1
}
