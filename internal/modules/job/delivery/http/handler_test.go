package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/modules/job/repository"
	jobService "anoa.com/jobboard/internal/modules/job/service"
	notificationService "anoa.com/jobboard/internal/modules/notification/service"
	searchService "anoa.com/jobboard/internal/modules/search/service"
	viewService "anoa.com/jobboard/internal/modules/view/service"
	"anoa.com/jobboard/internal/testutil"
	"anoa.com/jobboard/pkg/logger"
	"anoa.com/jobboard/pkg/storage"
	"anoa.com/jobboard/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type noDocuments struct{}

func (noDocuments) RemoveDocuments(_ context.Context, _ uint) {}

func router(t *testing.T, db *gorm.DB, actor *entity.User) *gin.Engine {
	t.Helper()
	validator.Setup()
	images, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := jobService.NewJobService(
		repository.NewJobRepository(db), images, searchService.NewNoopJobIndex(), noDocuments{},
		notificationService.NewLogNotifier(logger.Discard()), logger.Discard(),
	)
	h := NewJobHandler(svc, viewService.NewViewCounter(nil, nil, logger.Discard()))

	r := testutil.NewRouter(actor)
	r.GET("/jobs", h.List)
	r.GET("/jobs/search", h.Search)
	r.GET("/jobs/:id", h.Get)
	r.POST("/jobs", h.Create)
	r.POST("/jobs/:id", h.Update)
	r.DELETE("/jobs/:id", h.Delete)
	return r
}

func TestCreateJobFromForm(t *testing.T) {
	db := testutil.NewDB(t)
	employer := testutil.CreateUser(t, db, "Erin Employer", testutil.Employer)
	r := router(t, db, employer)

	rec := testutil.MakeMultipartRequest(t, r, http.MethodPost, "/jobs", map[string]string{
		"title":        "Go Developer",
		"description":  "Build APIs",
		"location":     "Jakarta",
		"type":         "Contract",
		"company_name": "Acme",
		"salary":       "1500.50",
		"category":     "Engineering",
	}, testutil.MultipartFile{
		Field:    "company_logo",
		FileName: "logo.png",
		Content:  append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Message string `json:"message"`
		Job     struct {
			ID          uint     `json:"id"`
			EmployerID  uint     `json:"employer_id"`
			Type        string   `json:"type"`
			Salary      *float64 `json:"salary"`
			CompanyLogo *string  `json:"company_logo"`
		} `json:"job"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "Job created successfully", body.Message)
	assert.Equal(t, employer.ID, body.Job.EmployerID)
	assert.Equal(t, "Contract", body.Job.Type)
	require.NotNil(t, body.Job.Salary)
	assert.InDelta(t, 1500.50, *body.Job.Salary, 0.001)
	assert.NotNil(t, body.Job.CompanyLogo)

	rec = testutil.MakeJSONRequest(t, r, http.MethodGet, fmt.Sprintf("/jobs/%d", body.Job.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateJobValidation(t *testing.T) {
	db := testutil.NewDB(t)
	employer := testutil.CreateUser(t, db, "Erin Employer", testutil.Employer)
	r := router(t, db, employer)

	rec := testutil.MakeJSONRequest(t, r, http.MethodPost, "/jobs", gin.H{
		"title":        "Go Developer",
		"description":  "Build APIs",
		"location":     "Jakarta",
		"type":         "Freelance",
		"company_name": "Acme",
		"salary":       -1,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Contains(t, body.Errors, "type")
	assert.Contains(t, body.Errors, "salary")

	rec = testutil.MakeMultipartRequest(t, r, http.MethodPost, "/jobs", map[string]string{
		"title":        "Go Developer",
		"description":  "Build APIs",
		"location":     "Jakarta",
		"type":         "Contract",
		"company_name": "Acme",
	}, testutil.MultipartFile{Field: "company_logo", FileName: "logo.png", Content: []byte("not an image")})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "company_logo")
}

func TestListAndManageJobs(t *testing.T) {
	db := testutil.NewDB(t)
	employer := testutil.CreateUser(t, db, "Erin Employer", testutil.Employer)
	stranger := testutil.CreateUser(t, db, "Sam Stranger")
	job := testutil.CreateJob(t, db, employer, "Go Developer")
	testutil.CreateJob(t, db, employer, "Designer")

	asStranger := router(t, db, stranger)
	rec := testutil.MakeJSONRequest(t, asStranger, http.MethodGet, "/jobs?search=go", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	testutil.DecodeJSON(t, rec, &list)
	assert.Len(t, list, 1)

	rec = testutil.MakeJSONRequest(t, asStranger, http.MethodGet, "/jobs?complete=maybe", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = testutil.MakeJSONRequest(t, asStranger, http.MethodGet, "/jobs/search?q=designer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	testutil.DecodeJSON(t, rec, &list)
	assert.Len(t, list, 1)

	rec = testutil.MakeJSONRequest(t, asStranger, http.MethodGet, "/jobs/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	url := fmt.Sprintf("/jobs/%d", job.ID)
	rec = testutil.MakeJSONRequest(t, asStranger, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	asEmployer := router(t, db, employer)
	rec = testutil.MakeJSONRequest(t, asEmployer, http.MethodPost, url, gin.H{"complete": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"complete":true`)

	rec = testutil.MakeJSONRequest(t, asEmployer, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = testutil.MakeJSONRequest(t, asEmployer, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
