package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"smartscheduler/internal/auth"
	"smartscheduler/internal/db"
	"smartscheduler/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateHost(ctx context.Context, email, name, phone, password string) (*db.Host, error)
}

type authService struct {
	repo     repository.HostRepository
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(repo repository.HostRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{repo: repo, secret: secret, tokenTTL: tokenTTL}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	host, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if host == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(host.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return auth.IssueToken(s.secret, host.ID, host.Email, s.tokenTTL)
}

func (s *authService) CreateHost(ctx context.Context, email, name, phone, password string) (*db.Host, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || name == "" {
		return nil, errors.New("email, name and password cannot be empty")
	}
	return s.repo.Create(ctx, email, name, phone, password)
}
