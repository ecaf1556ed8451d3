package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type TeacherEmailPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewTeacherEmailPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.TeacherEmailRepository {
	return &TeacherEmailPostgreSQL{db: db, helpers: helpers}
}

func (t *TeacherEmailPostgreSQL) Exists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&models.TeacherEmail{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}

func (t *TeacherEmailPostgreSQL) Add(ctx context.Context, entry *models.TeacherEmail) error {
	entry.Email = models.NormalizeEmail(entry.Email)
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
	if err != nil {
		return translateError(err)
	}
	t.helpers.notify(ctx, models.CollectionTeacherEmails)
	return nil
}

func (t *TeacherEmailPostgreSQL) Remove(ctx context.Context, email string) error {
	result := t.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		Delete(&models.TeacherEmail{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	t.helpers.notify(ctx, models.CollectionTeacherEmails)
	return nil
}

type UserProfilePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserProfilePostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.UserProfileRepository {
	return &UserProfilePostgreSQL{db: db, helpers: helpers}
}

// Upsert merges the profile: email, display name and role follow the latest
// sign-in, the creation time is kept.
func (u *UserProfilePostgreSQL) Upsert(ctx context.Context, profile *models.UserProfile) error {
	err := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "role", "updated_at"}),
		}).
		Create(profile).Error
	if err != nil {
		return translateError(err)
	}
	u.helpers.notify(ctx, models.CollectionUserProfiles)
	return nil
}

func (u *UserProfilePostgreSQL) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}
