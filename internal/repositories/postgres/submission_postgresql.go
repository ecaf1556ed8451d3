package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db, helpers: helpers}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return translateError(err)
	}
	s.helpers.notify(ctx, models.CollectionSubmissions)
	return nil
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, translateError(err)
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Submission{}).Error; err != nil {
		return translateError(err)
	}
	s.helpers.notify(ctx, models.CollectionSubmissions)
	return nil
}

// The list queries are plain equality filters; ordering is applied by the
// ledger so results are returned in storage order.

func (s *SubmissionPostgreSQL) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionPostgreSQL) ListByQuiz(ctx context.Context, quizID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.WithContext(ctx).Where("quiz_id = ?", quizID).Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionPostgreSQL) ListByClass(ctx context.Context, classID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.WithContext(ctx).Where("class_id = ?", classID).Find(&submissions).Error
	return submissions, err
}
