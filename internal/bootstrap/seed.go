package bootstrap

import (
	"errors"

	"anoa.com/jobboard/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Job{},
		&entity.SavedJob{},
		&entity.JobApplication{},
		&entity.Interview{},
		&entity.Conversation{},
		&entity.ConversationUser{},
		&entity.Message{},
	)
}

// SeedAdminUser creates the first administrator when none exists. Without a
// configured password nothing is seeded.
func SeedAdminUser(db *gorm.DB, log logrus.FieldLogger, email, password string) error {
	if password == "" {
		log.Info("ADMIN_SEED_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.WithField("email", email).Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hashed),
		IsAdmin:      true,
		IsEmployer:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.WithField("email", email).Info("admin user seeded")
	return nil
}
