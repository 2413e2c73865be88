package repository

import (
	"context"
	"errors"
	"testing"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddViewsSurvivesUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	employer := testutil.CreateUser(t, db, "Erin Employer", testutil.Employer)
	job := testutil.CreateJob(t, db, employer, "Go Developer")
	repo := NewJobRepository(db)
	ctx := context.Background()

	// stale copy loaded before the views land
	stale, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)

	require.NoError(t, repo.AddViews(ctx, job.ID, 3))
	require.NoError(t, repo.AddViews(ctx, job.ID, 2))

	stale.Title = "Senior Go Developer"
	require.NoError(t, repo.Update(ctx, stale))

	var stored entity.Job
	require.NoError(t, db.First(&stored, job.ID).Error)
	assert.Equal(t, "Senior Go Developer", stored.Title)
	assert.EqualValues(t, 5, stored.Views)
}

func TestAddViewsMissingJob(t *testing.T) {
	db := testutil.NewDB(t)

	err := NewJobRepository(db).AddViews(context.Background(), 999, 1)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFindAllFilters(t *testing.T) {
	db := testutil.NewDB(t)
	employer := testutil.CreateUser(t, db, "Erin Employer", testutil.Employer)
	other := testutil.CreateUser(t, db, "Omar Employer", testutil.Employer)
	goJob := testutil.CreateJob(t, db, employer, "Go Developer")
	testutil.CreateJob(t, db, employer, "Designer")
	testutil.CreateJob(t, db, other, "Golang Lead")
	repo := NewJobRepository(db)

	jobs, err := repo.FindAll(context.Background(), JobFilter{Search: "go DEV"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, goJob.ID, jobs[0].ID)

	jobs, err = repo.FindAll(context.Background(), JobFilter{EmployerID: other.ID})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Golang Lead", jobs[0].Title)
}
