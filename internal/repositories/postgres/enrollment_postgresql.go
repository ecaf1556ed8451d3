package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db, helpers: helpers}
}

func (e *EnrollmentPostgreSQL) Upsert(ctx context.Context, enrollment *models.ClassEnrollment) error {
	enrollment.ID = models.EnrollmentID(enrollment.ClassID, enrollment.StudentID)
	err := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"student_email", "student_name"}),
		}).
		Create(enrollment).Error
	if err != nil {
		return translateError(err)
	}
	e.helpers.notify(ctx, models.CollectionClassEnrollments)
	return nil
}

func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, id string) error {
	result := e.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ClassEnrollment{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	e.helpers.notify(ctx, models.CollectionClassEnrollments)
	return nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, classID, studentID string) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.ClassEnrollment{}).
		Where("id = ?", models.EnrollmentID(classID, studentID)).
		Count(&count).Error
	return count > 0, err
}

func (e *EnrollmentPostgreSQL) ListByStudent(ctx context.Context, studentID string) ([]*models.ClassEnrollment, error) {
	var enrollments []*models.ClassEnrollment
	err := e.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&enrollments).Error
	return enrollments, err
}

func (e *EnrollmentPostgreSQL) ListByClass(ctx context.Context, classID string) ([]*models.ClassEnrollment, error) {
	var enrollments []*models.ClassEnrollment
	err := e.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("student_name").
		Find(&enrollments).Error
	return enrollments, err
}
