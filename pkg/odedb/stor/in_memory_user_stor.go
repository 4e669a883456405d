package stor

import (
	"fmt"
	"sync"

	"github.com/lakshyashishir/appinventor-sources/pkg/odedb/odemodel"
	"gorm.io/gorm"
)

type InMemoryUserStor struct {
	mu    sync.Mutex
	users []odemodel.User
}

func NewInMemoryUserStor(users []odemodel.User) *InMemoryUserStor {
	return &InMemoryUserStor{users: users}
}

func (s *InMemoryUserStor) CreateUser(user *odemodel.User) (*odemodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = len(s.users) + 1
	s.users = append(s.users, *user)
	return user, nil
}

func (s *InMemoryUserStor) GetUserByID(userID int) (*odemodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == userID {
			return &u, nil
		}
	}

	return nil, fmt.Errorf("no such user %d: %w", userID, gorm.ErrRecordNotFound)
}

func (s *InMemoryUserStor) GetUserByAPIToken(apitoken string) (*odemodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ApiToken != "" && u.ApiToken == apitoken {
			return &u, nil
		}
	}

	return nil, fmt.Errorf("no user for token: %w", gorm.ErrRecordNotFound)
}
