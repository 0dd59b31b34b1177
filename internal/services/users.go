package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/auth"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
)

var (
	ErrUserExists         = errors.New("user_exists")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// UserService manages dashboard accounts.
type UserService struct {
	db     *gorm.DB
	hasher auth.PasswordHasher
}

func NewUserService(db *gorm.DB, hasher auth.PasswordHasher) *UserService {
	return &UserService{db: db, hasher: hasher}
}

// Signup creates a user. Returns ErrUserExists when the name is taken.
func (s *UserService) Signup(ctx context.Context, name, password string, role auth.Role) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}
	return s.create(db, name, password, role)
}

// Login verifies credentials. With createIfNotExists an unknown name is
// registered with role, and a known user whose stored role differs from role
// is switched to it after the password check.
func (s *UserService) Login(ctx context.Context, name, password string, createIfNotExists bool, role auth.Role) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	err := db.Where("name = ?", name).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !createIfNotExists {
			return nil, ErrUserNotFound
		}
		created, err := s.create(db, name, password, role)
		if err != nil {
			return nil, err
		}
		user = *created
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Check(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	user.Role = auth.NormalizeRole(string(user.Role))
	if createIfNotExists && role != user.Role {
		if err := db.Model(&user).Update("role", role).Error; err != nil {
			return nil, fmt.Errorf("update role: %w", err)
		}
		user.Role = role
	}
	return &user, nil
}

func (s *UserService) create(db *gorm.DB, name, password string, role auth.Role) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, PasswordHash: hash, Role: role}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
