package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/job/dto"
	"anoa.com/jobboard/internal/modules/job/repository"
	notificationService "anoa.com/jobboard/internal/modules/notification/service"
	searchService "anoa.com/jobboard/internal/modules/search/service"
	"anoa.com/jobboard/internal/testutil"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/logger"
	"anoa.com/jobboard/pkg/storage"
	"anoa.com/jobboard/pkg/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var png = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type recordingIndex struct {
	indexed []uint
	removed []uint
	hits    []uint
	err     error
}

func (i *recordingIndex) Index(_ context.Context, job *entity.Job) error {
	i.indexed = append(i.indexed, job.ID)
	return nil
}

func (i *recordingIndex) Remove(_ context.Context, id uint) error {
	i.removed = append(i.removed, id)
	return nil
}

func (i *recordingIndex) Search(context.Context, string, int64) ([]uint, error) {
	return i.hits, i.err
}

type recordingNotifier struct {
	events   []notificationService.Event
	payloads []any
}

func (n *recordingNotifier) Notify(_ context.Context, event notificationService.Event, payload any) error {
	n.events = append(n.events, event)
	n.payloads = append(n.payloads, payload)
	return nil
}

type recordingRemover struct {
	jobs []uint
}

func (r *recordingRemover) RemoveDocuments(_ context.Context, jobID uint) {
	r.jobs = append(r.jobs, jobID)
}

type fixture struct {
	db       *gorm.DB
	root     string
	images   *storage.LocalStorage
	index    *recordingIndex
	notifier *recordingNotifier
	remover  *recordingRemover
	svc      JobService
	employer *entity.User
	admin    *entity.User
	stranger *entity.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	root := t.TempDir()
	images, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		root:     root,
		images:   images,
		index:    &recordingIndex{err: searchService.ErrUnavailable},
		notifier: &recordingNotifier{},
		remover:  &recordingRemover{},
	}
	f.svc = NewJobService(repository.NewJobRepository(db), images, f.index, f.remover, f.notifier, logger.Discard())
	f.employer = testutil.CreateUser(t, db, "Erin Employer", testutil.Employer)
	f.admin = testutil.CreateUser(t, db, "Ann Admin", testutil.Admin)
	f.stranger = testutil.CreateUser(t, db, "Sam Stranger")
	return f
}

func (f *fixture) logoPath(url string) string {
	return filepath.Join(f.images.PublicDir(), filepath.FromSlash(strings.TrimPrefix(url, "/storage/")))
}

func createRequest() dto.CreateJobRequest {
	return dto.CreateJobRequest{
		Title:       "Go Developer",
		Description: "<p>Build APIs</p><script>alert(1)</script>",
		Location:    "Jakarta",
		Type:        "Full-time",
		CompanyName: "Acme",
	}
}

func logo(t *testing.T) *upload.File {
	t.Helper()
	f, err := upload.FromBytes("logo.png", png, upload.LogoRule)
	require.NoError(t, err)
	return f
}

func status(err error) int {
	return apperror.MapErrorToStatus(err)
}

func TestCreateJob(t *testing.T) {
	f := setup(t)

	job, err := f.svc.Create(context.Background(), f.employer, createRequest(), logo(t))
	require.NoError(t, err)
	assert.Equal(t, f.employer.ID, job.EmployerID)
	assert.Equal(t, "<p>Build APIs</p>", job.Description)
	require.NotNil(t, job.CompanyLogo)
	assert.True(t, strings.HasPrefix(*job.CompanyLogo, "/storage/company_logos/"))
	assert.FileExists(t, f.logoPath(*job.CompanyLogo))
	assert.Equal(t, []uint{job.ID}, f.index.indexed)
}

func TestCreateJobAuthorization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.stranger, createRequest(), nil)
	assert.Equal(t, http.StatusForbidden, status(err))

	other := testutil.CreateUser(t, f.db, "Olga Other", testutil.Employer)
	req := createRequest()
	req.EmployerID = other.ID
	_, err = f.svc.Create(ctx, f.employer, req, nil)
	assert.Equal(t, http.StatusForbidden, status(err))

	job, err := f.svc.Create(ctx, f.admin, req, nil)
	require.NoError(t, err)
	assert.Equal(t, other.ID, job.EmployerID)
}

func TestUpdateJobReplacesLogo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job, err := f.svc.Create(ctx, f.employer, createRequest(), logo(t))
	require.NoError(t, err)
	oldLogo := *job.CompanyLogo

	title := "Senior Go Developer"
	updated, err := f.svc.Update(ctx, f.employer, job.ID, dto.UpdateJobRequest{Title: &title}, logo(t))
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "Jakarta", updated.Location)
	require.NotNil(t, updated.CompanyLogo)
	assert.NotEqual(t, oldLogo, *updated.CompanyLogo)
	assert.FileExists(t, f.logoPath(*updated.CompanyLogo))
	_, statErr := os.Stat(f.logoPath(oldLogo))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestUpdateJobAuthorization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.employer, "Go Developer")
	title := "Hijacked"

	_, err := f.svc.Update(ctx, f.stranger, job.ID, dto.UpdateJobRequest{Title: &title}, nil)
	assert.Equal(t, http.StatusForbidden, status(err))

	_, err = f.svc.Update(ctx, f.employer, 999, dto.UpdateJobRequest{Title: &title}, nil)
	assert.Equal(t, http.StatusNotFound, status(err))

	updated, err := f.svc.Update(ctx, f.admin, job.ID, dto.UpdateJobRequest{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", updated.Title)
}

func TestReopeningJobNotifiesWatchers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job := testutil.CreateJob(t, f.db, f.employer, "Go Developer")
	watcher := testutil.CreateUser(t, f.db, "Wendy Watcher")
	require.NoError(t, f.db.Create(&entity.SavedJob{UserID: watcher.ID, JobID: job.ID}).Error)

	done, reopen := true, false
	_, err := f.svc.Update(ctx, f.employer, job.ID, dto.UpdateJobRequest{Complete: &done}, nil)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.events)

	_, err = f.svc.Update(ctx, f.employer, job.ID, dto.UpdateJobRequest{Complete: &done}, nil)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.events)

	_, err = f.svc.Update(ctx, f.employer, job.ID, dto.UpdateJobRequest{Complete: &reopen}, nil)
	require.NoError(t, err)
	require.Equal(t, []notificationService.Event{notificationService.EventJobReopened}, f.notifier.events)

	payload, ok := f.notifier.payloads[0].(notificationService.JobReopened)
	require.True(t, ok)
	assert.Equal(t, job.ID, payload.Job.ID)
	require.Len(t, payload.Recipients, 1)
	assert.Equal(t, watcher.ID, payload.Recipients[0].ID)
}

func TestDeleteJobCascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job, err := f.svc.Create(ctx, f.employer, createRequest(), logo(t))
	require.NoError(t, err)
	applicant := testutil.CreateUser(t, f.db, "Uma Applicant")
	testutil.CreateApplication(t, f.db, applicant, job)

	err = f.svc.Delete(ctx, f.stranger, job.ID)
	assert.Equal(t, http.StatusForbidden, status(err))

	require.NoError(t, f.svc.Delete(ctx, f.employer, job.ID))
	assert.Equal(t, []uint{job.ID}, f.remover.jobs)
	assert.Equal(t, []uint{job.ID}, f.index.removed)
	_, statErr := os.Stat(f.logoPath(*job.CompanyLogo))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	var count int64
	require.NoError(t, f.db.Model(&entity.JobApplication{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = f.svc.Get(ctx, job.ID)
	assert.Equal(t, http.StatusNotFound, status(err))
}

func TestSearchUsesEngineRanking(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := testutil.CreateJob(t, f.db, f.employer, "Go Developer")
	second := testutil.CreateJob(t, f.db, f.employer, "Rust Developer")

	f.index.err = nil
	f.index.hits = []uint{second.ID, 999, first.ID}
	jobs, err := f.svc.Search(ctx, "developer")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateJob(t, f.db, f.employer, "Go Developer")
	testutil.CreateJob(t, f.db, f.employer, "Product Designer")

	for _, indexErr := range []error{searchService.ErrUnavailable, errors.New("connection refused")} {
		f.index.err = indexErr
		jobs, err := f.svc.Search(ctx, "go dev")
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "Go Developer", jobs[0].Title)
	}
}
