package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuizPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db, helpers: helpers}
}

func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	if err := q.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return translateError(err)
	}
	q.helpers.notify(ctx, models.CollectionQuizzes)
	return nil
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&quiz).Error; err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	if err := q.db.WithContext(ctx).Save(quiz).Error; err != nil {
		return translateError(err)
	}
	q.helpers.notify(ctx, models.CollectionQuizzes)
	return nil
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, id string) error {
	if err := q.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Quiz{}).Error; err != nil {
		return translateError(err)
	}
	q.helpers.notify(ctx, models.CollectionQuizzes)
	return nil
}

func (q *QuizPostgreSQL) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	err := q.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (q *QuizPostgreSQL) ListByClass(ctx context.Context, classID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	err := q.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (q *QuizPostgreSQL) ListByClasses(ctx context.Context, classIDs []string) ([]*models.Quiz, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	var quizzes []*models.Quiz
	err := q.db.WithContext(ctx).
		Where("class_id IN ?", classIDs).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (q *QuizPostgreSQL) ListWithoutClass(ctx context.Context, teacherID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	err := q.db.WithContext(ctx).
		Where("teacher_id = ? AND (class_id IS NULL OR class_id = '')", teacherID).
		Find(&quizzes).Error
	return quizzes, err
}
