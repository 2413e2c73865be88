package service

import (
	"context"
	"errors"
	"strings"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/admin/dto"
	userRepo "anoa.com/jobboard/internal/modules/user/repository"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/database"
	"anoa.com/jobboard/pkg/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminService is account management for administrators. Callers are
// expected to sit behind the admin middleware.
type AdminService interface {
	CreateUser(ctx context.Context, actor *entity.User, input dto.CreateUserInput) (*entity.User, error)
	ListUsers(ctx context.Context, filter dto.UserFilter) ([]*entity.User, error)
	DeleteUser(ctx context.Context, actor *entity.User, id uint) error
}

type adminService struct {
	users  userRepo.UserRepository
	images storage.ImageStorage
	log    logrus.FieldLogger
}

func NewAdminService(users userRepo.UserRepository, images storage.ImageStorage, log logrus.FieldLogger) AdminService {
	return &adminService{users: users, images: images, log: log}
}

func (s *adminService) CreateUser(ctx context.Context, actor *entity.User, input dto.CreateUserInput) (*entity.User, error) {
	entry := s.log.WithField("actor_id", actor.ID)

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Storage("failed to create user", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		IsAdmin:      input.IsAdmin,
		IsEmployer:   input.IsEmployer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Validation("the given data was invalid",
				map[string]string{"email": "email has already been taken"})
		}
		entry.WithError(err).Error("failed to create user")
		return nil, apperror.Storage("failed to create user", err)
	}

	entry.WithField("user_id", user.ID).Info("user created by admin")
	return user, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter dto.UserFilter) ([]*entity.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, apperror.Storage("failed to load users", err)
	}
	if filter.Role == "" {
		return users, nil
	}

	out := make([]*entity.User, 0, len(users))
	for _, u := range users {
		switch {
		case filter.Role == "admin" && u.IsAdmin,
			filter.Role == "employer" && u.IsEmployer,
			filter.Role == "applicant" && !u.IsAdmin && !u.IsEmployer:
			out = append(out, u)
		}
	}
	return out, nil
}

// DeleteUser cascades to the user's jobs, applications and conversations.
// The profile photo is removed best-effort.
func (s *adminService) DeleteUser(ctx context.Context, actor *entity.User, id uint) error {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "user_id": id})

	if actor.ID == id {
		return apperror.Validation("the given data was invalid",
			map[string]string{"id": "you cannot delete your own account"})
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return apperror.Storage("failed to load user", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		entry.WithError(err).Error("failed to delete user")
		return apperror.Storage("failed to delete user", err)
	}

	if user.ProfilePhoto != nil && *user.ProfilePhoto != "" {
		if err := s.images.DeleteImage(context.WithoutCancel(ctx), *user.ProfilePhoto); err != nil {
			entry.WithError(err).Warn("failed to delete profile photo")
		}
	}
	entry.Info("user deleted")
	return nil
}
