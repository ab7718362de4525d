package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"parking_marketplace/internal/domain"
	"parking_marketplace/internal/repository"
)

var ErrInvalidCredentials = errors.New("all credential fields are required")
var ErrUnauthenticated = errors.New("not logged in")

const sessionUserID = "1"

// restoredUser được gán khi khởi động lại mà flag isAuthenticated vẫn còn.
var restoredUser = domain.User{ID: sessionUserID, Name: "Demo User", Email: "user@example.com"}

// SessionStore giữ tối đa một identity đăng nhập. Không có token hay mật khẩu thật.
type SessionStore struct {
	blobs   repository.BlobStore
	latency Latency

	mu   sync.RWMutex
	user *domain.User
}

func NewSessionStore(ctx context.Context, blobs repository.BlobStore, latency Latency) (*SessionStore, error) {
	if latency == nil {
		latency = NoLatency
	}
	s := &SessionStore{blobs: blobs, latency: latency}

	flag, err := blobs.Get(ctx, repository.KeyIsAuthenticated)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("read session flag: %w", err)
	}
	if flag == "true" && s.user == nil {
		u := restoredUser
		s.user = &u
		log.Printf("Session restored for placeholder user '%s'", u.Email)
	}
	return s, nil
}

// Login thành công khi email và password đều khác rỗng.
func (s *SessionStore) Login(ctx context.Context, dto domain.LoginUserDTO) (domain.User, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return domain.User{}, err
	}
	if dto.Email == "" || dto.Password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	name, _, _ := strings.Cut(dto.Email, "@")
	return s.signIn(ctx, domain.User{ID: sessionUserID, Name: name, Email: dto.Email})
}

func (s *SessionStore) Register(ctx context.Context, dto domain.RegisterUserDTO) (domain.User, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return domain.User{}, err
	}
	if dto.Name == "" || dto.Email == "" || dto.Password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	return s.signIn(ctx, domain.User{ID: sessionUserID, Name: dto.Name, Email: dto.Email})
}

func (s *SessionStore) signIn(ctx context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.blobs.Put(ctx, repository.KeyIsAuthenticated, "true"); err != nil {
		return domain.User{}, fmt.Errorf("persist session flag: %w", err)
	}
	s.user = &u
	log.Printf("User '%s' signed in", u.Email)
	return u, nil
}

func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err := s.blobs.Delete(ctx, repository.KeyIsAuthenticated); err != nil {
		return fmt.Errorf("clear session flag: %w", err)
	}
	return nil
}

func (s *SessionStore) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *SessionStore) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}
