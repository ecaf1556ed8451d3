package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// ===== FAKES =====

type fakeProxy struct {
	configured  bool
	evaluations models.Evaluations
	err         error
	calls       int
}

func (p *fakeProxy) Configured() bool { return p.configured }

func (p *fakeProxy) Grade(ctx context.Context, req grading.GradeRequest) (models.Evaluations, error) {
	p.calls++
	return p.evaluations, p.err
}

type fakeTokenParser struct {
	claims *casdoorsdk.Claims
	err    error
	token  string
}

func (p *fakeTokenParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	p.token = token
	return p.claims, p.err
}

type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) ResolveRole(ctx context.Context, email string) (models.UserRole, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.UserRole), args.Error(1)
}

func (m *MockIdentityService) EnsureProfile(ctx context.Context, actor services.Actor) (*models.UserProfile, error) {
	args := m.Called(ctx, actor)
	profile, _ := args.Get(0).(*models.UserProfile)
	return profile, args.Error(1)
}

func (m *MockIdentityService) AddTeacherEmail(ctx context.Context, actor services.Actor, req *services.TeacherEmailRequest) (*models.TeacherEmail, error) {
	args := m.Called(ctx, actor, req)
	email, _ := args.Get(0).(*models.TeacherEmail)
	return email, args.Error(1)
}

func (m *MockIdentityService) RemoveTeacherEmail(ctx context.Context, actor services.Actor, email string) error {
	return m.Called(ctx, actor, email).Error(0)
}

func (m *MockIdentityService) SeedTeacherEmails(ctx context.Context, emails []string) error {
	return m.Called(ctx, emails).Error(0)
}

// stubQuizService answers the list calls; other methods are not used here.
type stubQuizService struct {
	services.QuizService
	forTeacher []*models.Quiz
	forStudent []*models.Quiz
	getErr     error
}

func (s *stubQuizService) ListForTeacher(ctx context.Context, actor services.Actor) ([]*models.Quiz, error) {
	return s.forTeacher, nil
}

func (s *stubQuizService) ListForStudent(ctx context.Context, actor services.Actor) ([]*models.Quiz, error) {
	return s.forStudent, nil
}

func (s *stubQuizService) Get(ctx context.Context, actor services.Actor, quizID string) (*models.Quiz, error) {
	return nil, s.getErr
}

type stubServiceManager struct {
	quiz     services.QuizService
	identity services.IdentityService
}

func (m *stubServiceManager) Quiz() services.QuizService         { return m.quiz }
func (m *stubServiceManager) Class() services.ClassService       { return nil }
func (m *stubServiceManager) Attempt() services.AttemptService   { return nil }
func (m *stubServiceManager) Review() services.ReviewService     { return nil }
func (m *stubServiceManager) Identity() services.IdentityService { return m.identity }

// ===== GRADING ENDPOINT =====

func gradingRouter(proxy GradingProxy) *gin.Engine {
	router := gin.New()
	router.Any("/api/grade", NewGradingHandler(proxy, testLogger()).Grade)
	return router
}

func TestGradingHandler_MethodNotAllowed(t *testing.T) {
	router := gradingRouter(&fakeProxy{configured: true})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/grade", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	var body grading.ErrorBody
	decode(t, w, &body)
	assert.Equal(t, "Method not allowed", body.Error)
}

func TestGradingHandler_BadRequests(t *testing.T) {
	proxy := &fakeProxy{configured: true}
	router := gradingRouter(proxy)

	for name, payload := range map[string]string{
		"malformed json":  `{"questions": [`,
		"no questions":    `{"quizTitle": "Q"}`,
		"empty questions": `{"questions": []}`,
		"question no id":  `{"questions": [{"text": "2+2"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grade", strings.NewReader(payload)))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body grading.ErrorBody
			decode(t, w, &body)
			assert.NotEmpty(t, body.Error)
		})
	}
	assert.Zero(t, proxy.calls)
}

func TestGradingHandler_NotConfigured(t *testing.T) {
	proxy := &fakeProxy{configured: false}
	router := gradingRouter(proxy)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grade",
		strings.NewReader(`{"questions": [{"id": "q1", "text": "2+2"}]}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body grading.ErrorBody
	decode(t, w, &body)
	assert.Equal(t, grading.ErrNotConfigured.Error(), body.Error)
	assert.Zero(t, proxy.calls)
}

func TestGradingHandler_Success(t *testing.T) {
	proxy := &fakeProxy{
		configured: true,
		evaluations: models.Evaluations{
			"q1": {IsCorrect: true, Feedback: "Right"},
		},
	}
	router := gradingRouter(proxy)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grade",
		strings.NewReader(`{"quizTitle": "Math", "questions": [{"id": "q1", "text": "2+2"}], "studentAnswers": {"q1": "4"}}`)))

	require.Equal(t, http.StatusOK, w.Code)
	var body grading.GradeResponse
	decode(t, w, &body)
	assert.Equal(t, proxy.evaluations, body.Evaluations)
}

func TestGradingHandler_UpstreamFailure(t *testing.T) {
	router := gradingRouter(&fakeProxy{configured: true, err: errors.New("boom")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/grade",
		strings.NewReader(`{"questions": [{"id": "q1", "text": "2+2"}]}`)))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body grading.ErrorBody
	decode(t, w, &body)
	assert.Equal(t, "Grading failed", body.Error)
}

// ===== AUTHENTICATION =====

func TestHeaderAuthenticator(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := HeaderAuthenticator{}.Authenticate(req)
	assert.ErrorIs(t, err, ErrMissingIdentity)

	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Email", "u1@school.org")
	req.Header.Set("X-User-Name", "User One")
	identity, err := HeaderAuthenticator{}.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Email: "u1@school.org", DisplayName: "User One"}, identity)
}

func TestCasdoorAuthenticator(t *testing.T) {
	claims := &casdoorsdk.Claims{User: casdoorsdk.User{Id: "u1", Email: "u1@school.org", DisplayName: "User One"}}
	parser := &fakeTokenParser{claims: claims}
	auth := NewCasdoorAuthenticator(parser)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.Authenticate(req)
	assert.ErrorIs(t, err, ErrMissingToken)

	req.Header.Set("Authorization", "Bearer tok-1")
	identity, err := auth.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", parser.token)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "User One", identity.DisplayName)
}

func TestCasdoorAuthenticator_QueryTokenAndFallbacks(t *testing.T) {
	claims := &casdoorsdk.Claims{User: casdoorsdk.User{Name: "alice", Email: "alice@school.org"}}
	claims.Subject = "sub-1"
	parser := &fakeTokenParser{claims: claims}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/ledger?access_token=tok-ws", nil)
	identity, err := NewCasdoorAuthenticator(parser).Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, "tok-ws", parser.token)
	assert.Equal(t, "sub-1", identity.UserID)
	assert.Equal(t, "alice", identity.DisplayName)
}

func TestCasdoorAuthenticator_InvalidToken(t *testing.T) {
	parser := &fakeTokenParser{err: errors.New("signature is invalid")}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")

	_, err := NewCasdoorAuthenticator(parser).Authenticate(req)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	identity := new(MockIdentityService)
	identity.On("ResolveRole", mock.Anything, "t1@school.org").Return(models.RoleTeacher, nil)
	identity.On("EnsureProfile", mock.Anything, mock.MatchedBy(func(a services.Actor) bool {
		return a.UserID == "t1" && a.IsTeacher()
	})).Return(nil, errors.New("profile store down"))

	router := gin.New()
	router.Use(AuthMiddleware(HeaderAuthenticator{}, identity, testLogger()))
	router.GET("/whoami", func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, actor)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "t1")
	req.Header.Set("X-User-Email", "t1@school.org")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var actor services.Actor
	decode(t, w, &actor)
	assert.Equal(t, models.RoleTeacher, actor.Role)
	identity.AssertExpectations(t)
}

func TestAuthMiddleware_RoleLookupFailure(t *testing.T) {
	identity := new(MockIdentityService)
	identity.On("ResolveRole", mock.Anything, "").Return(models.UserRole(""), errors.New("db down"))

	router := gin.New()
	router.Use(AuthMiddleware(HeaderAuthenticator{}, identity, testLogger()))
	router.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-ID", "s1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	identity.AssertNotCalled(t, "EnsureProfile", mock.Anything, mock.Anything)
}

// ===== ERROR MAPPING =====

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		contains string
	}{
		{
			name:   "validation",
			err:    services.ValidationErrors{{Field: "title", Message: "is required"}},
			status: http.StatusBadRequest,
			code:   CodeValidation,
		},
		{
			name: "ownership rule",
			err: services.NewPermissionError("t2", "q1", "quiz", "update", "not the quiz owner",
				services.ErrQuizAccessDenied),
			status:   http.StatusForbidden,
			code:     CodePermissionDenied,
			contains: "You are not allowed to update this quiz (not the quiz owner)",
		},
		{
			name:     "unattributed refusal",
			err:      &services.PermissionError{UserID: "t1", Resource: "quiz", Action: "create"},
			status:   http.StatusForbidden,
			code:     CodePermissionDenied,
			contains: "unknown reason",
		},
		{
			name:     "teacher only",
			err:      fmt.Errorf("create class: %w", services.ErrTeacherOnly),
			status:   http.StatusForbidden,
			code:     CodePermissionDenied,
			contains: "Only teachers",
		},
		{
			name:     "not found",
			err:      services.ErrQuizNotFound,
			status:   http.StatusNotFound,
			code:     CodeNotFound,
			contains: "Quiz not found",
		},
		{
			name:   "conflict",
			err:    services.ErrAttemptLimitExceeded,
			status: http.StatusConflict,
			code:   CodeConflict,
		},
		{
			name:   "business rule",
			err:    services.NewBusinessRuleError("max_attempts", "must be a whole number", nil),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown",
			err:    errors.New("connection reset"),
			status: http.StatusInternalServerError,
			code:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBaseHandler(testLogger())
			router := gin.New()
			router.GET("/", func(c *gin.Context) { h.handleServiceError(c, tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			var body ErrorResponse
			decode(t, w, &body)
			assert.Equal(t, tt.code, body.Code)
			if tt.contains != "" {
				assert.Contains(t, body.Message, tt.contains)
			}
		})
	}
}

// ===== ROUTES =====

func newTestRouter(quiz services.QuizService, identity services.IdentityService) *gin.Engine {
	manager := &stubServiceManager{quiz: quiz, identity: identity}
	feed := repositories.NewMemoryNotifier()
	hm := NewHandlerManager(manager, &fakeProxy{}, feed, nil, HeaderAuthenticator{}, testLogger())

	router := gin.New()
	hm.SetupRoutes(router)
	return router
}

func asUser(req *http.Request, id, email string) *http.Request {
	req.Header.Set("X-User-ID", id)
	req.Header.Set("X-User-Email", email)
	return req
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	router := newTestRouter(&stubQuizService{}, new(MockIdentityService))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRoutes_ListQuizzesByRole(t *testing.T) {
	identity := new(MockIdentityService)
	identity.On("ResolveRole", mock.Anything, "t1@school.org").Return(models.RoleTeacher, nil)
	identity.On("ResolveRole", mock.Anything, "s1@school.org").Return(models.RoleStudent, nil)
	identity.On("EnsureProfile", mock.Anything, mock.Anything).Return(&models.UserProfile{}, nil)

	quizzes := &stubQuizService{
		forTeacher: []*models.Quiz{{ID: "own", Title: "Mine"}},
		forStudent: []*models.Quiz{{ID: "enrolled", Title: "Class quiz"}},
	}
	router := newTestRouter(quizzes, identity)

	for _, tc := range []struct {
		id, email, want string
	}{
		{"t1", "t1@school.org", "own"},
		{"s1", "s1@school.org", "enrolled"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/quizzes", nil), tc.id, tc.email))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Quizzes []struct {
				ID string `json:"id"`
			} `json:"quizzes"`
		}
		decode(t, w, &body)
		require.Len(t, body.Quizzes, 1)
		assert.Equal(t, tc.want, body.Quizzes[0].ID)
	}
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	router := newTestRouter(&stubQuizService{}, new(MockIdentityService))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quizzes", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_GetQuizDenied(t *testing.T) {
	identity := new(MockIdentityService)
	identity.On("ResolveRole", mock.Anything, mock.Anything).Return(models.RoleStudent, nil)
	identity.On("EnsureProfile", mock.Anything, mock.Anything).Return(&models.UserProfile{}, nil)

	quizzes := &stubQuizService{
		getErr: services.NewPermissionError("s9", "q1", "quiz", "read", "not enrolled in the quiz's class",
			services.ErrQuizAccessDenied),
	}
	router := newTestRouter(quizzes, identity)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/quizzes/q1", nil), "s9", "s9@school.org"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body ErrorResponse
	decode(t, w, &body)
	assert.Contains(t, body.Message, "You are not allowed to read this quiz")
}

func TestRoutes_GradeIsPublicAndPostOnly(t *testing.T) {
	router := newTestRouter(&stubQuizService{}, new(MockIdentityService))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/grade", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
