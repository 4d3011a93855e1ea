package security

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

var ErrInvalidCredentials = errors.New("security: invalid credentials")

// User is one entry of the users file.
type User struct {
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

type usersFile struct {
	Users map[string]User `yaml:"users"`
}

// UserStore holds the known users. It is safe for concurrent use.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewUserStore creates a store with the given users.
func NewUserStore(users map[string]User) *UserStore {
	s := &UserStore{}
	s.Replace(users)
	return s
}

// LoadUsers reads a users file.
func LoadUsers(path string) (*UserStore, error) {
	users, err := readUsers(path)
	if err != nil {
		return nil, err
	}
	return NewUserStore(users), nil
}

func readUsers(path string) (map[string]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security: read users file: %w", err)
	}
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("security: parse users file: %w", err)
	}
	for name, u := range f.Users {
		if _, err := parseHash(u.Password); err != nil {
			return nil, fmt.Errorf("security: user %s: %w", name, err)
		}
	}
	return f.Users, nil
}

// Reload re-reads path and replaces the users on success.
func (s *UserStore) Reload(path string) error {
	users, err := readUsers(path)
	if err != nil {
		return err
	}
	s.Replace(users)
	return nil
}

// Replace swaps in a new set of users.
func (s *UserStore) Replace(users map[string]User) {
	m := make(map[string]User, len(users))
	for k, v := range users {
		m[k] = v
	}
	s.mu.Lock()
	s.users = m
	s.mu.Unlock()
}

// Names returns the sorted user names.
func (s *UserStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.users))
	for n := range s.users {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Authenticate checks the credentials and returns the caller identity.
func (s *UserStore) Authenticate(name, password string) (ejb.Identity, error) {
	s.mu.RLock()
	u, ok := s.users[name]
	s.mu.RUnlock()
	if !ok {
		return ejb.Identity{}, ErrInvalidCredentials
	}

	match, err := VerifyPassword(password, u.Password)
	if err != nil {
		return ejb.Identity{}, fmt.Errorf("security: user %s: %w", name, err)
	}
	if !match {
		return ejb.Identity{}, ErrInvalidCredentials
	}
	return ejb.Identity{Name: name, Roles: append([]string(nil), u.Roles...)}, nil
}
