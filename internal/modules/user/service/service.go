package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/user/dto"
	"anoa.com/jobboard/internal/modules/user/repository"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/database"
	"anoa.com/jobboard/pkg/denylist"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	// Logout revokes the token identified by tokenID until it expires.
	Logout(ctx context.Context, actor *entity.User, tokenID string, expiresAt time.Time) error
}

// TokenRevoker records logged out tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
	revoker  TokenRevoker
	log      logrus.FieldLogger
}

// NewAuthService builds the auth service. Without a revoker, logout only
// asks clients to drop their token.
func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration, revoker TokenRevoker, log logrus.FieldLogger) AuthService {
	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
		revoker:  revoker,
		log:      log,
	}
}

func emailTaken() error {
	return apperror.Validation("the given data was invalid", map[string]string{"email": "email has already been taken"})
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, emailTaken()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Storage("failed to register", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "failed to register", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, emailTaken()
		}
		s.log.WithError(err).Error("failed to create user")
		return nil, apperror.Storage("failed to register", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperror.Storage("failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.WithField("user_id", user.ID).Warn("failed login attempt")
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Logout(ctx context.Context, actor *entity.User, tokenID string, expiresAt time.Time) error {
	entry := s.log.WithField("user_id", actor.ID)
	if s.revoker == nil || tokenID == "" {
		entry.Warn("logout without revocation, token stays valid until expiry")
		return nil
	}

	if err := s.revoker.Revoke(ctx, tokenID, expiresAt); err != nil {
		if errors.Is(err, denylist.ErrUnavailable) {
			entry.Warn("logout without revocation, token stays valid until expiry")
			return nil
		}
		entry.WithError(err).Error("failed to revoke token")
		return apperror.Storage("failed to log out, please try again", err)
	}

	entry.Info("user logged out")
	return nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, apperror.New(http.StatusInternalServerError, "failed to issue token", err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
