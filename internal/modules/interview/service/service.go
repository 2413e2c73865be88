package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/jobboard/internal/authz"
	"anoa.com/jobboard/internal/entity"
	appRepo "anoa.com/jobboard/internal/modules/application/repository"
	"anoa.com/jobboard/internal/modules/interview/repository"
	"anoa.com/jobboard/pkg/apperror"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InterviewService interface {
	// Schedule parses scheduledAt only after the application lookup and the
	// permission check, so 404 and 403 win over 422.
	Schedule(ctx context.Context, actor *entity.User, applicationID uint, title, scheduledAt string) (*entity.Interview, error)
	// ListFor returns interviews for jobs the actor posted when they are an
	// employer or admin, and interviews for their own applications otherwise.
	ListFor(ctx context.Context, actor *entity.User) ([]*entity.Interview, error)
	// ListScheduled is the employer-only view of ListFor.
	ListScheduled(ctx context.Context, actor *entity.User) ([]*entity.Interview, error)
}

type interviewService struct {
	repo repository.InterviewRepository
	apps appRepo.ApplicationRepository
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewInterviewService(repo repository.InterviewRepository, apps appRepo.ApplicationRepository, log logrus.FieldLogger) InterviewService {
	return &interviewService{repo: repo, apps: apps, log: log, now: time.Now}
}

// scheduleLayouts are tried in order. Values without a zone are UTC.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseScheduledAt(raw string) (time.Time, bool) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *interviewService) Schedule(ctx context.Context, actor *entity.User, applicationID uint, title, rawScheduledAt string) (*entity.Interview, error) {
	entry := s.log.WithFields(logrus.Fields{"actor_id": actor.ID, "application_id": applicationID})

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry.Warn("interview for missing application")
			return nil, apperror.NotFound("job application not found")
		}
		entry.WithError(err).Error("failed to load application")
		return nil, apperror.Storage("could not schedule interview due to a server error", err)
	}

	if d := authz.CanScheduleInterview(actor, app); !d.Allowed {
		entry.Warn("unauthorized interview schedule attempt")
		return nil, d.Err()
	}

	fields := map[string]string{}
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		fields["title"] = "title is required"
	case len([]rune(title)) > 255:
		fields["title"] = "title may not be greater than 255 characters"
	}
	var scheduledAt time.Time
	rawScheduledAt = strings.TrimSpace(rawScheduledAt)
	if rawScheduledAt == "" {
		fields["scheduled_at"] = "scheduled time is required"
	} else if at, ok := parseScheduledAt(rawScheduledAt); !ok {
		fields["scheduled_at"] = "scheduled time is not a valid date"
	} else if !at.After(s.now()) {
		fields["scheduled_at"] = "scheduled time must be a date after now"
	} else {
		scheduledAt = at
	}
	if len(fields) > 0 {
		entry.WithField("errors", fields).Warn("interview validation failed")
		return nil, apperror.Validation("the given data was invalid", fields)
	}

	interview := &entity.Interview{
		JobApplicationID: app.ID,
		EmployerID:       actor.ID,
		Title:            title,
		ScheduledAt:      scheduledAt,
	}
	if err := s.repo.Create(ctx, interview); err != nil {
		entry.WithError(err).Error("failed to schedule interview")
		return nil, apperror.Storage("could not schedule interview due to a server error", err)
	}

	interview.JobApplication = app
	entry.WithField("interview_id", interview.ID).Info("interview scheduled")
	return interview, nil
}

func (s *interviewService) ListFor(ctx context.Context, actor *entity.User) ([]*entity.Interview, error) {
	var (
		items []*entity.Interview
		err   error
	)
	if authz.CanListOwnInterviews(actor).Allowed {
		items, err = s.repo.ForJobsPostedBy(ctx, actor.ID)
	} else {
		items, err = s.repo.ForApplicant(ctx, actor.ID)
	}
	if err != nil {
		return nil, apperror.Storage("failed to load interviews", err)
	}
	return items, nil
}

func (s *interviewService) ListScheduled(ctx context.Context, actor *entity.User) ([]*entity.Interview, error) {
	if d := authz.CanListOwnInterviews(actor); !d.Allowed {
		s.log.WithField("actor_id", actor.ID).Warn(d.Reason)
		return nil, d.Err()
	}
	items, err := s.repo.ForJobsPostedBy(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Storage("failed to load interviews", err)
	}
	return items, nil
}
