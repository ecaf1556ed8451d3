package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// ServiceManager hands out the services to the HTTP layer
type ServiceManager interface {
	Quiz() QuizService
	Class() ClassService
	Attempt() AttemptService
	Review() ReviewService
	Identity() IdentityService
}

// Dependencies is everything the services need from the outside
type Dependencies struct {
	Repo           repositories.Repository
	Cache          cache.CacheService
	Grader         grading.Service
	Publisher      events.EventPublisher
	Validator      *validator.Validator
	GradingTimeout time.Duration
	Logger         *slog.Logger
}

type serviceManager struct {
	quiz     QuizService
	class    ClassService
	attempt  AttemptService
	review   ReviewService
	identity IdentityService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewMemoryCache()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &serviceManager{
		quiz:     NewQuizService(deps.Repo, deps.Cache, deps.Logger, deps.Validator),
		class:    NewClassService(deps.Repo, deps.Cache, deps.Logger, deps.Validator),
		attempt:  NewAttemptService(deps.Repo, deps.Grader, deps.Publisher, deps.GradingTimeout, deps.Logger),
		review:   NewReviewService(deps.Repo, deps.Logger),
		identity: NewIdentityService(deps.Repo, deps.Logger, deps.Validator),
	}
}

func (m *serviceManager) Quiz() QuizService         { return m.quiz }
func (m *serviceManager) Class() ClassService       { return m.class }
func (m *serviceManager) Attempt() AttemptService   { return m.attempt }
func (m *serviceManager) Review() ReviewService     { return m.review }
func (m *serviceManager) Identity() IdentityService { return m.identity }
