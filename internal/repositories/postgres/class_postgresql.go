package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type ClassPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewClassPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.ClassRepository {
	return &ClassPostgreSQL{db: db, helpers: helpers}
}

func (c *ClassPostgreSQL) Create(ctx context.Context, class *models.Class) error {
	if err := c.db.WithContext(ctx).Create(class).Error; err != nil {
		return translateError(err)
	}
	c.helpers.notify(ctx, models.CollectionClasses)
	return nil
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&class).Error; err != nil {
		return nil, translateError(err)
	}
	return &class, nil
}

func (c *ClassPostgreSQL) Update(ctx context.Context, class *models.Class) error {
	if err := c.db.WithContext(ctx).Save(class).Error; err != nil {
		return translateError(err)
	}
	c.helpers.notify(ctx, models.CollectionClasses)
	return nil
}

// Delete removes the class together with its enrollments. Quizzes and
// submissions keep their classId.
func (c *ClassPostgreSQL) Delete(ctx context.Context, id string) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_id = ?", id).Delete(&models.ClassEnrollment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Class{}).Error
	})
	if err != nil {
		return translateError(err)
	}
	c.helpers.notify(ctx, models.CollectionClassEnrollments)
	c.helpers.notify(ctx, models.CollectionClasses)
	return nil
}

func (c *ClassPostgreSQL) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Class, error) {
	var classes []*models.Class
	err := c.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "is_default"}, Desc: true}).
		Order("name").
		Find(&classes).Error
	return classes, err
}

func (c *ClassPostgreSQL) GetDefault(ctx context.Context, teacherID string) (*models.Class, error) {
	var class models.Class
	if err := c.db.WithContext(ctx).
		Where("teacher_id = ? AND is_default = ?", teacherID, true).
		First(&class).Error; err != nil {
		return nil, translateError(err)
	}
	return &class, nil
}
