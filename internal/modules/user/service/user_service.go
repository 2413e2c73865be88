package service

import (
	"context"
	"errors"
	"strings"

	"anoa.com/jobboard/internal/authz"
	"anoa.com/jobboard/internal/entity"
	jobRepo "anoa.com/jobboard/internal/modules/job/repository"
	notificationService "anoa.com/jobboard/internal/modules/notification/service"
	"anoa.com/jobboard/internal/modules/user/dto"
	"anoa.com/jobboard/internal/modules/user/repository"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/database"
	"anoa.com/jobboard/pkg/storage"
	"anoa.com/jobboard/pkg/upload"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const photoFolder = "profile_photos"

type UserService interface {
	List(ctx context.Context) ([]*entity.User, error)
	Get(ctx context.Context, id uint) (*dto.UserProfile, error)
	// Update edits the caller's own profile. Admins may change anyone's role
	// flags but nothing else on other accounts.
	Update(ctx context.Context, actor *entity.User, id uint, req dto.UpdateUserRequest, photo *upload.File) (*entity.User, error)
	RemoveProfilePhoto(ctx context.Context, actor *entity.User, id uint) error

	SaveJob(ctx context.Context, actor *entity.User, userID, jobID uint) error
	UnsaveJob(ctx context.Context, actor *entity.User, userID, jobID uint) error
	SavedJobIDs(ctx context.Context, actor *entity.User, userID uint) ([]uint, error)
	PostedJobs(ctx context.Context, actor *entity.User, userID uint) ([]*entity.Job, error)

	RequestEmployerRole(ctx context.Context, actor *entity.User, message string) error
}

type userService struct {
	repo     repository.UserRepository
	jobs     jobRepo.JobRepository
	images   storage.ImageStorage
	notifier notificationService.Notifier
	log      logrus.FieldLogger
}

func NewUserService(
	repo repository.UserRepository,
	jobs jobRepo.JobRepository,
	images storage.ImageStorage,
	notifier notificationService.Notifier,
	log logrus.FieldLogger,
) UserService {
	return &userService{
		repo:     repo,
		jobs:     jobs,
		images:   images,
		notifier: notifier,
		log:      log,
	}
}

func (s *userService) find(ctx context.Context, id uint) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Storage("failed to load user", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*entity.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Storage("failed to load users", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*dto.UserProfile, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.SavedJobs(ctx, id)
	if err != nil {
		return nil, apperror.Storage("failed to load saved jobs", err)
	}
	posted, err := s.repo.PostedJobs(ctx, id)
	if err != nil {
		return nil, apperror.Storage("failed to load posted jobs", err)
	}
	return &dto.UserProfile{User: user, SavedJobs: saved, PostedJobs: posted}, nil
}

func (s *userService) Update(ctx context.Context, actor *entity.User, id uint, req dto.UpdateUserRequest, photo *upload.File) (*entity.User, error) {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "user_id": id})

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ChangesProfile() || photo != nil {
		if d := authz.CanActAsUser(actor, id); !d.Allowed {
			entry.Warn("unauthorized profile update attempt")
			return nil, d.Err()
		}
	}
	if req.ChangesRoles() {
		if d := authz.CanGrantRoles(actor); !d.Allowed {
			entry.Warn("unauthorized role change attempt")
			return nil, d.Err()
		}
	}
	if !req.ChangesProfile() && !req.ChangesRoles() && photo == nil {
		if d := authz.CanActAsUser(actor, id); !d.Allowed {
			return nil, d.Err()
		}
		return user, nil
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, emailTaken()
			}
		}
		user.Email = email
	}
	if req.Description != nil {
		user.Description = req.Description
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.IsEmployer != nil {
		user.IsEmployer = *req.IsEmployer
	}

	oldPhoto := user.ProfilePhoto
	var newPhoto *string
	if photo != nil {
		url, err := s.images.UploadImage(ctx, photo.Reader(), photoFolder, uuid.NewString()+"."+photo.Ext)
		if err != nil {
			entry.WithError(err).Error("failed to upload profile photo")
			return nil, apperror.Storage("failed to upload profile photo", err)
		}
		newPhoto = &url
		user.ProfilePhoto = newPhoto
	}

	if err := s.repo.Update(ctx, user); err != nil {
		s.deletePhoto(ctx, entry, newPhoto)
		if database.IsUniqueViolation(err) {
			return nil, emailTaken()
		}
		entry.WithError(err).Error("failed to update user")
		return nil, apperror.Storage("failed to update user", err)
	}
	if newPhoto != nil {
		s.deletePhoto(ctx, entry, oldPhoto)
	}

	entry.Info("user updated")
	return user, nil
}

func (s *userService) deletePhoto(ctx context.Context, entry logrus.FieldLogger, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.images.DeleteImage(context.WithoutCancel(ctx), *url); err != nil {
		entry.WithError(err).WithField("photo", *url).Warn("failed to delete profile photo")
	}
}

func (s *userService) RemoveProfilePhoto(ctx context.Context, actor *entity.User, id uint) error {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "user_id": id})

	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if d := authz.CanActAsUser(actor, id); !d.Allowed {
		entry.Warn("unauthorized photo removal attempt")
		return d.Err()
	}
	if user.ProfilePhoto == nil {
		return nil
	}

	old := user.ProfilePhoto
	user.ProfilePhoto = nil
	if err := s.repo.Update(ctx, user); err != nil {
		entry.WithError(err).Error("failed to clear profile photo")
		return apperror.Storage("failed to remove profile photo", err)
	}
	s.deletePhoto(ctx, entry, old)
	return nil
}

// ensureJob reports a missing job as 404.
func (s *userService) ensureJob(ctx context.Context, jobID uint) error {
	if _, err := s.jobs.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("job not found")
		}
		return apperror.Storage("failed to load job", err)
	}
	return nil
}

func (s *userService) SaveJob(ctx context.Context, actor *entity.User, userID, jobID uint) error {
	if d := authz.CanActAsUser(actor, userID); !d.Allowed {
		s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "user_id": userID}).Warn(d.Reason)
		return d.Err()
	}
	if err := s.ensureJob(ctx, jobID); err != nil {
		return err
	}
	if err := s.repo.SaveJob(ctx, userID, jobID); err != nil {
		return apperror.Storage("failed to save job", err)
	}
	return nil
}

func (s *userService) UnsaveJob(ctx context.Context, actor *entity.User, userID, jobID uint) error {
	if d := authz.CanActAsUser(actor, userID); !d.Allowed {
		s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "user_id": userID}).Warn(d.Reason)
		return d.Err()
	}
	if err := s.ensureJob(ctx, jobID); err != nil {
		return err
	}
	if err := s.repo.UnsaveJob(ctx, userID, jobID); err != nil {
		return apperror.Storage("failed to unsave job", err)
	}
	return nil
}

func (s *userService) SavedJobIDs(ctx context.Context, actor *entity.User, userID uint) ([]uint, error) {
	if d := authz.CanActAsUser(actor, userID); !d.Allowed {
		return nil, d.Err()
	}
	ids, err := s.repo.SavedJobIDs(ctx, userID)
	if err != nil {
		return nil, apperror.Storage("failed to load saved jobs", err)
	}
	return ids, nil
}

func (s *userService) PostedJobs(ctx context.Context, actor *entity.User, userID uint) ([]*entity.Job, error) {
	if !actor.IsAdmin && actor.ID != userID {
		return nil, apperror.Forbidden("you can only list your own posted jobs")
	}
	if _, err := s.find(ctx, userID); err != nil {
		return nil, err
	}
	jobs, err := s.repo.PostedJobs(ctx, userID)
	if err != nil {
		return nil, apperror.Storage("failed to load posted jobs", err)
	}
	return jobs, nil
}

func (s *userService) RequestEmployerRole(ctx context.Context, actor *entity.User, message string) error {
	entry := s.log.WithField("actor_id", actor.ID)

	payload := notificationService.EmployerRoleRequest{User: actor, Message: strings.TrimSpace(message)}
	if err := s.notifier.Notify(ctx, notificationService.EventEmployerRoleRequested, payload); err != nil {
		entry.WithError(err).Error("failed to send employer role request")
		return apperror.Storage("There was an error sending your request. Please try again later.", err)
	}
	entry.Info("employer role requested")
	return nil
}
