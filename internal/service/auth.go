package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"agri_chat/internal/config"
	"agri_chat/internal/domain"
	"agri_chat/internal/repository"
	pkgerrors "agri_chat/pkg/errors"
	"agri_chat/pkg/jwt"
	"agri_chat/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, username, password, nickname string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*domain.User, error)
}

type LoginResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWTConfig
	log      logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, username, password, nickname string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	nickname = strings.TrimSpace(nickname)
	password = strings.TrimSpace(password)

	if username == "" || len(username) > 64 {
		return nil, pkgerrors.ErrBadRequest
	}
	if len(password) < 6 {
		return nil, pkgerrors.ErrBadRequest
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("Failed to hash password", "error", err)
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		Nickname:     nickname,
		Enabled:      true,
		Role:         domain.RoleUser,
		UserType:     domain.UserTypeFarmer,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		// Не раскрываем, существует ли пользователь
		return nil, pkgerrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, pkgerrors.ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, pkgerrors.ErrForbidden
	}

	accessToken, err := jwt.GenerateAccessToken(user.Username, user.Role, s.jwtCfg.Secret, s.jwtCfg.AccessTTL)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResponse{
		User:        user,
		AccessToken: accessToken,
	}, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtCfg.Secret)
	if err != nil {
		return nil, pkgerrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Username)
	if err != nil {
		return nil, pkgerrors.ErrInvalidToken
	}
	if !user.Enabled {
		return nil, pkgerrors.ErrForbidden
	}

	return user, nil
}
