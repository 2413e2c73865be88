package database

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB   *gorm.DB
	once sync.Once
)

const uniqueViolationCode = "23505"

// Connect opens the Postgres connection once. DATABASE_URL wins over the
// discrete DB_* variables.
func Connect(databaseURL string) (*gorm.DB, error) {
	var err error
	once.Do(func() {
		dsn := databaseURL
		if dsn == "" {
			dsn = fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				valueOrDefault("DB_HOST", "localhost"),
				valueOrDefault("DB_USER", "postgres"),
				os.Getenv("DB_PASS"),
				valueOrDefault("DB_NAME", "jobboard"),
				valueOrDefault("DB_PORT", "5432"),
			)
		}

		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(dsn), Config())
		if err != nil {
			err = fmt.Errorf("failed to connect database: %w", err)
			return
		}

		DB = db
	})

	if err != nil {
		return nil, err
	}
	if DB == nil {
		return nil, errors.New("database connection was not initialized")
	}
	return DB, nil
}

// Config is shared by the server and the sqlite-backed tests so both see
// gorm.ErrDuplicatedKey for unique violations.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	// sqlite, when the dialector does not translate
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func valueOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}
