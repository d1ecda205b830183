package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agora/internal/models"
	"agora/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService registers users and checks credentials. Session handling
// lives in the HTTP layer; this service only resolves identities.
type AuthService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuthService(db *gorm.DB, log *zap.Logger) *AuthService {
	return &AuthService{db: db, log: log.Named("auth")}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		s.log.Error("hash password", zap.Error(err))
		return nil, err
	}

	user := models.User{Username: username, Password: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", username))
	return &user, nil
}

// Authenticate returns the user for a valid username/password pair. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("login failed: unknown user", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		s.log.Debug("login failed: bad password", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UserByID loads the identity bound to a session.
func (s *AuthService) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &user, nil
}
