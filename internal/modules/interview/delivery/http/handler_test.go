package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	appRepo "anoa.com/jobboard/internal/modules/application/repository"
	"anoa.com/jobboard/internal/modules/interview/repository"
	interviewService "anoa.com/jobboard/internal/modules/interview/service"
	"anoa.com/jobboard/internal/testutil"
	"anoa.com/jobboard/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleInterviewEndpoint(t *testing.T) {
	db := testutil.NewDB(t)
	employer := testutil.CreateUser(t, db, "Erin Employer", testutil.Employer)
	applicant := testutil.CreateUser(t, db, "Uma Applicant")
	app := testutil.CreateApplication(t, db, applicant, testutil.CreateJob(t, db, employer, "Go Developer"))

	h := NewInterviewHandler(interviewService.NewInterviewService(
		repository.NewInterviewRepository(db), appRepo.NewApplicationRepository(db), logger.Discard(),
	))
	mount := func(r *gin.Engine) *gin.Engine {
		r.POST("/applications/:id/interviews", h.Schedule)
		r.GET("/interviews", h.List)
		r.GET("/interviews/scheduled", h.ListScheduled)
		return r
	}
	asEmployer := mount(testutil.NewRouter(employer))
	asApplicant := mount(testutil.NewRouter(applicant))
	url := fmt.Sprintf("/applications/%d/interviews", app.ID)

	rec := testutil.MakeJSONRequest(t, asEmployer, http.MethodPost, url, gin.H{
		"title":        "Tech Screen",
		"scheduled_at": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Message   string `json:"message"`
		Interview struct {
			EmployerID uint   `json:"employer_id"`
			Title      string `json:"title"`
		} `json:"interview"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, employer.ID, body.Interview.EmployerID)
	assert.Equal(t, "Tech Screen", body.Interview.Title)

	rec = testutil.MakeJSONRequest(t, asEmployer, http.MethodPost, url, gin.H{
		"title":        "Tech Screen",
		"scheduled_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "scheduled_at")

	rec = testutil.MakeJSONRequest(t, asApplicant, http.MethodPost, url, gin.H{"title": "Sneaky"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Date layout problems never hide a missing record or a denied actor.
	laravelStyle := gin.H{"title": "Tech Screen", "scheduled_at": "2030-01-01 10:00:00"}
	rec = testutil.MakeJSONRequest(t, asApplicant, http.MethodPost, url, laravelStyle)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = testutil.MakeJSONRequest(t, asEmployer, http.MethodPost, "/applications/9999/interviews", laravelStyle)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = testutil.MakeJSONRequest(t, asEmployer, http.MethodPost, url, laravelStyle)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = testutil.MakeJSONRequest(t, asEmployer, http.MethodPost, url, gin.H{"title": "Tech Screen", "scheduled_at": "soon"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var invalid struct {
		Errors map[string]string `json:"errors"`
	}
	testutil.DecodeJSON(t, rec, &invalid)
	assert.Equal(t, "scheduled time is not a valid date", invalid.Errors["scheduled_at"])
	assert.NotContains(t, invalid.Errors, "body")

	rec = testutil.MakeJSONRequest(t, asApplicant, http.MethodGet, "/interviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	testutil.DecodeJSON(t, rec, &list)
	assert.Len(t, list, 2)

	rec = testutil.MakeJSONRequest(t, asApplicant, http.MethodGet, "/interviews/scheduled", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
