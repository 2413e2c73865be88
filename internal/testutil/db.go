package testutil

import (
	"fmt"
	"strings"
	"testing"

	"anoa.com/jobboard/internal/bootstrap"
	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/database"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	db, err := gorm.Open(sqlite.Open(dsn), database.Config())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

type UserOption func(*entity.User)

func Employer(u *entity.User) { u.IsEmployer = true }
func Admin(u *entity.User)    { u.IsAdmin = true }

// CreateUser inserts a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, name string, opts ...UserOption) *entity.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &entity.User{
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		PasswordHash: string(hash),
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateJob(t *testing.T, db *gorm.DB, employer *entity.User, title string) *entity.Job {
	t.Helper()

	j := &entity.Job{
		EmployerID:  employer.ID,
		Title:       title,
		Description: "Build things",
		Location:    "Remote",
		Type:        entity.JobTypeFullTime,
		CompanyName: "Acme",
	}
	require.NoError(t, db.Create(j).Error)
	return j
}

func CreateApplication(t *testing.T, db *gorm.DB, applicant *entity.User, job *entity.Job) *entity.JobApplication {
	t.Helper()

	a := &entity.JobApplication{
		UserID:     applicant.ID,
		JobID:      job.ID,
		ResumePath: fmt.Sprintf("applications/%d_%d_seed/resume.pdf", applicant.ID, job.ID),
	}
	require.NoError(t, db.Create(a).Error)
	return a
}
