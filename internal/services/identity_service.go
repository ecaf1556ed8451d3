package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// bootstrapActor is recorded as the adder of configured teacher emails
const bootstrapActor = "bootstrap"

type identityService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	log       *ServiceLogger
	validator *validator.Validator
}

func NewIdentityService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) IdentityService {
	return &identityService{
		repo:      repo,
		logger:    logger,
		log:       NewServiceLogger(logger, "identity"),
		validator: validator,
	}
}

// ResolveRole grants the teacher role to allow-listed emails. Everyone else,
// including callers without an email, is a student.
func (s *identityService) ResolveRole(ctx context.Context, email string) (models.UserRole, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return models.RoleStudent, nil
	}
	ok, err := s.repo.TeacherEmail().Exists(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up teacher email: %w", err)
	}
	if ok {
		return models.RoleTeacher, nil
	}
	return models.RoleStudent, nil
}

func (s *identityService) EnsureProfile(ctx context.Context, actor Actor) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		ID:          actor.UserID,
		Email:       models.NormalizeEmail(actor.Email),
		DisplayName: actor.DisplayName,
		Role:        actor.Role,
	}
	if err := s.repo.UserProfile().Upsert(ctx, profile); err != nil {
		return nil, storeError(err, actor, "profile", actor.UserID, "update")
	}
	return profile, nil
}

func (s *identityService) AddTeacherEmail(ctx context.Context, actor Actor, req *TeacherEmailRequest) (entry *models.TeacherEmail, err error) {
	op := s.log.WithOperation(ctx, "identity.add_teacher_email", actor.UserID)
	defer func() { op.LogResult(req.Email, "teacher_email", err) }()

	if err = requireTeacher(actor); err != nil {
		return nil, err
	}
	if err = s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	entry = &models.TeacherEmail{
		Email:   models.NormalizeEmail(req.Email),
		AddedBy: actor.UserID,
	}
	if err = s.repo.TeacherEmail().Add(ctx, entry); err != nil {
		return nil, storeError(err, actor, "teacher_email", entry.Email, "create")
	}
	return entry, nil
}

func (s *identityService) RemoveTeacherEmail(ctx context.Context, actor Actor, email string) (err error) {
	op := s.log.WithOperation(ctx, "identity.remove_teacher_email", actor.UserID)
	defer func() { op.LogResult(email, "teacher_email", err) }()

	if err = requireTeacher(actor); err != nil {
		return err
	}
	email = models.NormalizeEmail(email)
	if email == models.NormalizeEmail(actor.Email) {
		return ErrCannotRemoveOwnTeacher
	}
	if err = s.repo.TeacherEmail().Remove(ctx, email); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTeacherEmailNotFound
		}
		return storeError(err, actor, "teacher_email", email, "delete")
	}
	return nil
}

// SeedTeacherEmails adds configured emails to the allow-list so a fresh
// deployment has someone able to grant the teacher role.
func (s *identityService) SeedTeacherEmails(ctx context.Context, emails []string) error {
	for _, email := range emails {
		email = models.NormalizeEmail(email)
		if email == "" {
			continue
		}
		entry := &models.TeacherEmail{Email: email, AddedBy: bootstrapActor}
		if err := s.repo.TeacherEmail().Add(ctx, entry); err != nil {
			return fmt.Errorf("failed to seed teacher email %s: %w", email, err)
		}
	}
	if len(emails) > 0 {
		s.logger.Info("Seeded teacher emails", "count", len(emails))
	}
	return nil
}
