package authz

import (
	"fmt"
	"net/http"
	"testing"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

const (
	applicantID = 10
	employerID  = 20
	strangerID  = 30
)

func application() *entity.JobApplication {
	return &entity.JobApplication{
		ID:     1,
		UserID: applicantID,
		JobID:  5,
		Job:    &entity.Job{ID: 5, EmployerID: employerID},
	}
}

// Every combination of relation and capability flags.
func TestApplicationPredicatesOverAllActors(t *testing.T) {
	for _, id := range []uint{applicantID, employerID, strangerID} {
		for _, isAdmin := range []bool{false, true} {
			for _, isEmployer := range []bool{false, true} {
				actor := &entity.User{ID: id, IsAdmin: isAdmin, IsEmployer: isEmployer}
				name := fmt.Sprintf("id=%d admin=%t employer=%t", id, isAdmin, isEmployer)

				t.Run(name, func(t *testing.T) {
					app := application()
					wantView := id == applicantID || id == employerID || isAdmin
					wantSchedule := id == employerID || isAdmin

					assert.Equal(t, wantView, CanViewApplication(actor, app).Allowed)
					assert.Equal(t, wantView, CanManageApplication(actor, app).Allowed)
					assert.Equal(t, wantSchedule, CanScheduleInterview(actor, app).Allowed)
					assert.Equal(t, isAdmin || isEmployer, CanListOwnInterviews(actor).Allowed)
					assert.Equal(t, isAdmin || isEmployer, CanListOwnJobs(actor).Allowed)
				})
			}
		}
	}
}

func TestEmployerFlagAloneDoesNotGrantAccess(t *testing.T) {
	otherEmployer := &entity.User{ID: strangerID, IsEmployer: true}

	d := CanViewApplication(otherEmployer, application())
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)
}

func TestApplicationWithoutJobOnlyMatchesApplicant(t *testing.T) {
	app := application()
	app.Job = nil

	assert.True(t, CanViewApplication(&entity.User{ID: applicantID}, app).Allowed)
	assert.False(t, CanScheduleInterview(&entity.User{ID: employerID}, app).Allowed)
}

func TestCanActAsUserHasNoAdminOverride(t *testing.T) {
	admin := &entity.User{ID: 1, IsAdmin: true}

	assert.True(t, CanActAsUser(admin, 1).Allowed)
	assert.False(t, CanActAsUser(admin, 2).Allowed)
	assert.False(t, CanActAsUser(nil, 2).Allowed)
}

func TestCanCreateJobFor(t *testing.T) {
	employer := &entity.User{ID: 2, IsEmployer: true}
	admin := &entity.User{ID: 1, IsAdmin: true}
	applicant := &entity.User{ID: 3}

	assert.True(t, CanCreateJobFor(employer, 2).Allowed)
	assert.False(t, CanCreateJobFor(employer, 9).Allowed)
	assert.True(t, CanCreateJobFor(admin, 9).Allowed)
	assert.False(t, CanCreateJobFor(applicant, 3).Allowed)
}

func TestCanManageJob(t *testing.T) {
	job := &entity.Job{ID: 1, EmployerID: 2}

	assert.True(t, CanManageJob(&entity.User{ID: 2}, job).Allowed)
	assert.True(t, CanManageJob(&entity.User{ID: 9, IsAdmin: true}, job).Allowed)
	assert.False(t, CanManageJob(&entity.User{ID: 9, IsEmployer: true}, job).Allowed)
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, allow().Err())

	err := deny("nope").Err()
	assert.Equal(t, http.StatusForbidden, apperror.MapErrorToStatus(err))
	assert.Equal(t, "nope", err.Error())
}
