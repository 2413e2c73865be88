package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"time"

	"anoa.com/jobboard/internal/authz"
	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/application/dto"
	appRepo "anoa.com/jobboard/internal/modules/application/repository"
	jobRepo "anoa.com/jobboard/internal/modules/job/repository"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/database"
	"anoa.com/jobboard/pkg/ratelimiter"
	"anoa.com/jobboard/pkg/storage"
	"anoa.com/jobboard/pkg/upload"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const rateLimitAction = "application"

type ApplicationService interface {
	Submit(ctx context.Context, actor *entity.User, jobID uint, resume, coverLetter *upload.Pending) (*entity.JobApplication, error)
	Get(ctx context.Context, actor *entity.User, id uint) (*entity.JobApplication, error)
	ListForJob(ctx context.Context, actor *entity.User, jobID uint) ([]*entity.JobApplication, error)
	ListSubmitted(ctx context.Context, actor *entity.User) ([]*entity.JobApplication, error)
	OpenResume(ctx context.Context, actor *entity.User, id uint) (*dto.Document, error)
	OpenCoverLetter(ctx context.Context, actor *entity.User, id uint) (*dto.Document, error)
	DeleteCoverLetter(ctx context.Context, actor *entity.User, id uint) error
	Delete(ctx context.Context, actor *entity.User, id uint) error
	// RemoveDocuments deletes the blobs of every application to a job. Used
	// before the job itself is deleted; failures are logged only.
	RemoveDocuments(ctx context.Context, jobID uint)
}

// RateLimiter reserves a per-user action window. *ratelimiter.Limiter
// satisfies it.
type RateLimiter interface {
	Check(ctx context.Context, userID uint, action string, window time.Duration) error
	Clear(ctx context.Context, userID uint, action string) error
}

type applicationService struct {
	repo      appRepo.ApplicationRepository
	jobs      jobRepo.JobRepository
	files     storage.FileStorage
	limiter   RateLimiter
	rateLimit time.Duration
	log       logrus.FieldLogger
}

func NewApplicationService(
	repo appRepo.ApplicationRepository,
	jobs jobRepo.JobRepository,
	files storage.FileStorage,
	limiter RateLimiter,
	rateLimit time.Duration,
	log logrus.FieldLogger,
) ApplicationService {
	if limiter == nil {
		limiter = (*ratelimiter.Limiter)(nil)
	}
	return &applicationService{
		repo:      repo,
		jobs:      jobs,
		files:     files,
		limiter:   limiter,
		rateLimit: rateLimit,
		log:       log,
	}
}

func (s *applicationService) Submit(ctx context.Context, actor *entity.User, jobID uint, resume, coverLetter *upload.Pending) (*entity.JobApplication, error) {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "job_id": jobID})

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry.Warn("application for missing job")
			return nil, apperror.NotFound("job not found")
		}
		return nil, apperror.Storage("failed to submit application, please try again", err)
	}

	resumeFile, err := resume.Load(upload.ResumeRule, true)
	if err != nil {
		return nil, err
	}
	coverFile, err := coverLetter.Load(upload.CoverLetterRule, false)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, actor.ID, jobID)
	if err != nil {
		return nil, apperror.Storage("failed to submit application, please try again", err)
	}
	if exists {
		entry.Info("duplicate application rejected")
		return nil, apperror.Conflict("you have already applied for this job")
	}

	if err := s.limiter.Check(ctx, actor.ID, rateLimitAction, s.rateLimit); err != nil {
		return nil, err
	}

	dir := fmt.Sprintf("applications/%d_%d_%s", actor.ID, jobID, uuid.NewString())
	var written []string

	resumePath := path.Join(dir, "resume."+resumeFile.Ext)
	if err := s.files.Upload(ctx, resumePath, resumeFile.ContentType, resumeFile.Reader()); err != nil {
		entry.WithError(err).Error("failed to store resume")
		s.release(ctx, actor.ID, entry)
		return nil, apperror.Storage("failed to submit application, please try again", err)
	}
	written = append(written, resumePath)

	app := &entity.JobApplication{
		UserID:     actor.ID,
		JobID:      jobID,
		ResumePath: resumePath,
	}

	if coverFile != nil {
		coverPath := path.Join(dir, "cover_letter."+coverFile.Ext)
		if err := s.files.Upload(ctx, coverPath, coverFile.ContentType, coverFile.Reader()); err != nil {
			entry.WithError(err).Error("failed to store cover letter")
			s.discard(ctx, written, entry)
			s.release(ctx, actor.ID, entry)
			return nil, apperror.Storage("failed to submit application, please try again", err)
		}
		written = append(written, coverPath)
		app.CoverLetterPath = &coverPath
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.discard(ctx, written, entry)
		s.release(ctx, actor.ID, entry)
		if database.IsUniqueViolation(err) {
			entry.Info("duplicate application lost race")
			return nil, apperror.Conflict("you have already applied for this job")
		}
		entry.WithError(err).Error("failed to save application")
		return nil, apperror.Storage("failed to submit application, please try again", err)
	}

	app.Job = job
	app.User = actor
	entry.WithField("application_id", app.ID).Info("application submitted")
	return app, nil
}

// discard removes blobs written by a failed submission. It ignores request
// cancellation so a dropped client does not leave orphans behind.
func (s *applicationService) discard(ctx context.Context, paths []string, entry logrus.FieldLogger) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range paths {
		if err := s.files.Delete(ctx, p); err != nil {
			entry.WithError(err).WithField("path", p).Error("failed to remove orphaned upload")
		}
	}
}

// release frees the rate limit window taken by a submission that was not
// saved, so the applicant can retry straight away.
func (s *applicationService) release(ctx context.Context, userID uint, entry logrus.FieldLogger) {
	if err := s.limiter.Clear(context.WithoutCancel(ctx), userID, rateLimitAction); err != nil {
		entry.WithError(err).Warn("failed to clear application rate limit")
	}
}

// load fetches an application and checks check against it.
func (s *applicationService) load(ctx context.Context, actor *entity.User, id uint, check func(*entity.User, *entity.JobApplication) authz.Decision) (*entity.JobApplication, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("job application not found")
		}
		return nil, apperror.Storage("failed to load application", err)
	}

	if d := check(actor, app); !d.Allowed {
		s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "application_id": id}).Warn(d.Reason)
		return nil, d.Err()
	}
	return app, nil
}

func (s *applicationService) Get(ctx context.Context, actor *entity.User, id uint) (*entity.JobApplication, error) {
	return s.load(ctx, actor, id, authz.CanViewApplication)
}

func (s *applicationService) ListForJob(ctx context.Context, actor *entity.User, jobID uint) ([]*entity.JobApplication, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("job not found")
		}
		return nil, apperror.Storage("failed to load applications", err)
	}

	if d := authz.CanManageJob(actor, job); !d.Allowed {
		s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "job_id": jobID}).Warn(d.Reason)
		return nil, apperror.Forbidden("you are not allowed to view applications for this job")
	}

	apps, err := s.repo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, apperror.Storage("failed to load applications", err)
	}
	for _, a := range apps {
		a.Job = job
	}
	return apps, nil
}

func (s *applicationService) ListSubmitted(ctx context.Context, actor *entity.User) ([]*entity.JobApplication, error) {
	apps, err := s.repo.FindByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load applications", err)
	}
	return apps, nil
}

func (s *applicationService) open(ctx context.Context, app *entity.JobApplication, p string, name string) (*dto.Document, error) {
	body, err := s.files.Open(ctx, p)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.log.WithFields(logrus.Fields{"application_id": app.ID, "path": p}).Warn("document missing from storage")
			return nil, apperror.NotFound(name + " file not found")
		}
		return nil, apperror.Storage("failed to open "+name, err)
	}

	ext := path.Ext(p)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &dto.Document{
		Body:        body,
		FileName:    fmt.Sprintf("%s_%d%s", name, app.ID, ext),
		ContentType: contentType,
	}, nil
}

func (s *applicationService) OpenResume(ctx context.Context, actor *entity.User, id uint) (*dto.Document, error) {
	app, err := s.load(ctx, actor, id, authz.CanViewApplication)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, app, app.ResumePath, "resume")
}

func (s *applicationService) OpenCoverLetter(ctx context.Context, actor *entity.User, id uint) (*dto.Document, error) {
	app, err := s.load(ctx, actor, id, authz.CanViewApplication)
	if err != nil {
		return nil, err
	}
	if app.CoverLetterPath == nil {
		return nil, apperror.NotFound("this application has no cover letter")
	}
	return s.open(ctx, app, *app.CoverLetterPath, "cover_letter")
}

func (s *applicationService) DeleteCoverLetter(ctx context.Context, actor *entity.User, id uint) error {
	app, err := s.load(ctx, actor, id, authz.CanManageApplication)
	if err != nil {
		return err
	}
	if app.CoverLetterPath == nil {
		return apperror.NotFound("this application has no cover letter")
	}

	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "application_id": id})
	if err := s.files.Delete(ctx, *app.CoverLetterPath); err != nil {
		entry.WithError(err).Error("failed to delete cover letter")
		return apperror.Storage("failed to delete cover letter", err)
	}

	app.CoverLetterPath = nil
	if err := s.repo.Update(ctx, app); err != nil {
		entry.WithError(err).Error("failed to clear cover letter path")
		return apperror.Storage("failed to delete cover letter", err)
	}
	entry.Info("cover letter deleted")
	return nil
}

func (s *applicationService) Delete(ctx context.Context, actor *entity.User, id uint) error {
	app, err := s.load(ctx, actor, id, authz.CanManageApplication)
	if err != nil {
		return err
	}

	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "application_id": id})
	s.deleteBlobs(ctx, app, entry)

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("job application not found")
		}
		entry.WithError(err).Error("failed to delete application")
		return apperror.Storage("failed to delete application", err)
	}
	entry.Info("application deleted")
	return nil
}

func (s *applicationService) deleteBlobs(ctx context.Context, app *entity.JobApplication, entry logrus.FieldLogger) {
	paths := []string{app.ResumePath}
	if app.CoverLetterPath != nil {
		paths = append(paths, *app.CoverLetterPath)
	}
	for _, p := range paths {
		if err := s.files.Delete(ctx, p); err != nil {
			entry.WithError(err).WithField("path", p).Warn("failed to delete application document")
		}
	}
}

func (s *applicationService) RemoveDocuments(ctx context.Context, jobID uint) {
	entry := s.log.WithField("job_id", jobID)
	apps, err := s.repo.FindByJob(ctx, jobID)
	if err != nil {
		entry.WithError(err).Warn("failed to list applications for document cleanup")
		return
	}
	for _, a := range apps {
		s.deleteBlobs(ctx, a, entry.WithField("application_id", a.ID))
	}
}
