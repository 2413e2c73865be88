package service

import (
	"context"
	"errors"
	"strings"

	"anoa.com/jobboard/internal/authz"
	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/job/dto"
	"anoa.com/jobboard/internal/modules/job/repository"
	notificationService "anoa.com/jobboard/internal/modules/notification/service"
	searchService "anoa.com/jobboard/internal/modules/search/service"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/storage"
	"anoa.com/jobboard/pkg/upload"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	logoFolder  = "company_logos"
	searchLimit = 50
)

// DocumentRemover deletes the stored documents of a job's applications.
type DocumentRemover interface {
	RemoveDocuments(ctx context.Context, jobID uint)
}

type JobService interface {
	List(ctx context.Context, filter repository.JobFilter) ([]*entity.Job, error)
	Search(ctx context.Context, query string) ([]*entity.Job, error)
	Get(ctx context.Context, id uint) (*entity.Job, error)
	Create(ctx context.Context, actor *entity.User, req dto.CreateJobRequest, logo *upload.File) (*entity.Job, error)
	Update(ctx context.Context, actor *entity.User, id uint, req dto.UpdateJobRequest, logo *upload.File) (*entity.Job, error)
	Delete(ctx context.Context, actor *entity.User, id uint) error
}

type jobService struct {
	repo      repository.JobRepository
	images    storage.ImageStorage
	index     searchService.JobIndex
	documents DocumentRemover
	notifier  notificationService.Notifier
	sanitizer *bluemonday.Policy
	log       logrus.FieldLogger
}

func NewJobService(
	repo repository.JobRepository,
	images storage.ImageStorage,
	index searchService.JobIndex,
	documents DocumentRemover,
	notifier notificationService.Notifier,
	log logrus.FieldLogger,
) JobService {
	return &jobService{
		repo:      repo,
		images:    images,
		index:     index,
		documents: documents,
		notifier:  notifier,
		sanitizer: bluemonday.UGCPolicy(),
		log:       log,
	}
}

func (s *jobService) List(ctx context.Context, filter repository.JobFilter) ([]*entity.Job, error) {
	jobs, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Storage("failed to load jobs", err)
	}
	return jobs, nil
}

// Search asks the search engine first and falls back to database matching
// when it is not configured or unreachable.
func (s *jobService) Search(ctx context.Context, query string) ([]*entity.Job, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, repository.JobFilter{})
	}

	ids, err := s.index.Search(ctx, query, searchLimit)
	if err != nil {
		if !errors.Is(err, searchService.ErrUnavailable) {
			s.log.WithError(err).Warn("search engine failed, falling back to database")
		}
		return s.List(ctx, repository.JobFilter{Search: query})
	}

	jobs, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Storage("failed to load jobs", err)
	}

	// keep the engine's ranking and drop hits that no longer exist
	byID := make(map[uint]*entity.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	ranked := make([]*entity.Job, 0, len(jobs))
	for _, id := range ids {
		if j, ok := byID[id]; ok {
			ranked = append(ranked, j)
		}
	}
	return ranked, nil
}

func (s *jobService) Get(ctx context.Context, id uint) (*entity.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("job not found")
		}
		return nil, apperror.Storage("failed to load job", err)
	}
	return job, nil
}

func (s *jobService) uploadLogo(ctx context.Context, logo *upload.File) (*string, error) {
	if logo == nil {
		return nil, nil
	}
	url, err := s.images.UploadImage(ctx, logo.Reader(), logoFolder, uuid.NewString()+"."+logo.Ext)
	if err != nil {
		return nil, apperror.Storage("failed to upload company logo", err)
	}
	return &url, nil
}

func (s *jobService) deleteLogo(ctx context.Context, entry logrus.FieldLogger, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.images.DeleteImage(context.WithoutCancel(ctx), *url); err != nil {
		entry.WithError(err).WithField("logo", *url).Warn("failed to delete company logo")
	}
}

func (s *jobService) reindex(ctx context.Context, entry logrus.FieldLogger, job *entity.Job) {
	if err := s.index.Index(ctx, job); err != nil {
		entry.WithError(err).Warn("failed to index job")
	}
}

func (s *jobService) Create(ctx context.Context, actor *entity.User, req dto.CreateJobRequest, logo *upload.File) (*entity.Job, error) {
	employerID := req.EmployerID
	if employerID == 0 {
		employerID = actor.ID
	}
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "employer_id": employerID})

	if d := authz.CanCreateJobFor(actor, employerID); !d.Allowed {
		entry.Warn("unauthorized job create attempt")
		return nil, d.Err()
	}

	logoURL, err := s.uploadLogo(ctx, logo)
	if err != nil {
		entry.WithError(err).Error("failed to upload company logo")
		return nil, err
	}

	job := &entity.Job{
		EmployerID:  employerID,
		Title:       strings.TrimSpace(req.Title),
		Description: s.sanitizer.Sanitize(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Type:        entity.JobType(req.Type),
		Salary:      req.Salary,
		CompanyName: strings.TrimSpace(req.CompanyName),
		CompanyLogo: logoURL,
		Category:    req.Category,
		Complete:    req.Complete,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		s.deleteLogo(ctx, entry, logoURL)
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperror.Validation("the given data was invalid",
				map[string]string{"employer_id": "the selected employer is invalid"})
		}
		entry.WithError(err).Error("failed to create job")
		return nil, apperror.Storage("failed to create job", err)
	}

	entry.WithField("job_id", job.ID).Info("job created")
	s.reindex(ctx, entry, job)
	return job, nil
}

func (s *jobService) Update(ctx context.Context, actor *entity.User, id uint, req dto.UpdateJobRequest, logo *upload.File) (*entity.Job, error) {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "job_id": id})

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := authz.CanManageJob(actor, job); !d.Allowed {
		entry.Warn("unauthorized job update attempt")
		return nil, d.Err()
	}

	wasComplete := job.Complete
	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.Location != nil {
		job.Location = strings.TrimSpace(*req.Location)
	}
	if req.Type != nil {
		job.Type = entity.JobType(*req.Type)
	}
	if req.Salary != nil {
		job.Salary = req.Salary
	}
	if req.CompanyName != nil {
		job.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Category != nil {
		job.Category = req.Category
	}
	if req.Complete != nil {
		job.Complete = *req.Complete
	}

	oldLogo := job.CompanyLogo
	newLogo, err := s.uploadLogo(ctx, logo)
	if err != nil {
		entry.WithError(err).Error("failed to upload company logo")
		return nil, err
	}
	if newLogo != nil {
		job.CompanyLogo = newLogo
	}

	if err := s.repo.Update(ctx, job); err != nil {
		s.deleteLogo(ctx, entry, newLogo)
		entry.WithError(err).Error("failed to update job")
		return nil, apperror.Storage("failed to update job", err)
	}
	if newLogo != nil {
		s.deleteLogo(ctx, entry, oldLogo)
	}

	entry.Info("job updated")
	s.reindex(ctx, entry, job)
	if wasComplete && !job.Complete {
		s.notifyReopened(ctx, entry, job)
	}
	return job, nil
}

// notifyReopened alerts everyone who saved the job. Failures never fail the
// update.
func (s *jobService) notifyReopened(ctx context.Context, entry logrus.FieldLogger, job *entity.Job) {
	users, err := s.repo.SavedBy(ctx, job.ID)
	if err != nil {
		entry.WithError(err).Warn("failed to load job watchers")
		return
	}
	if len(users) == 0 {
		return
	}

	payload := notificationService.JobReopened{Job: job, Recipients: users}
	if err := s.notifier.Notify(ctx, notificationService.EventJobReopened, payload); err != nil {
		entry.WithError(err).Warn("failed to send job reopened notifications")
		return
	}
	entry.WithField("recipients", len(users)).Info("job reopened notifications sent")
}

func (s *jobService) Delete(ctx context.Context, actor *entity.User, id uint) error {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "job_id": id})

	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if d := authz.CanManageJob(actor, job); !d.Allowed {
		entry.Warn("unauthorized job delete attempt")
		return d.Err()
	}

	s.documents.RemoveDocuments(ctx, job.ID)
	if err := s.repo.Delete(ctx, job.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("job not found")
		}
		entry.WithError(err).Error("failed to delete job")
		return apperror.Storage("failed to delete job", err)
	}
	s.deleteLogo(ctx, entry, job.CompanyLogo)

	if err := s.index.Remove(ctx, job.ID); err != nil {
		entry.WithError(err).Warn("failed to remove job from search index")
	}
	entry.Info("job deleted")
	return nil
}
