package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler     *QuizHandler
	classHandler    *ClassHandler
	attemptHandler  *AttemptHandler
	teacherHandler  *TeacherHandler
	gradingHandler  *GradingHandler
	realtimeHandler *RealtimeHandler
	authMiddleware  gin.HandlerFunc
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	proxy GradingProxy,
	feed repositories.ChangeFeed,
	submissions repositories.SubmissionRepository,
	auth Authenticator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), serviceManager.Review(), logger),
		classHandler:    NewClassHandler(serviceManager.Class(), serviceManager.Review(), logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), logger),
		teacherHandler:  NewTeacherHandler(serviceManager.Review(), serviceManager.Identity(), logger),
		gradingHandler:  NewGradingHandler(proxy, logger),
		realtimeHandler: NewRealtimeHandler(feed, submissions, serviceManager.Quiz(), logger),
		authMiddleware:  AuthMiddleware(auth, serviceManager.Identity(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	// The grading endpoint answers non-POST methods itself with 405
	router.Any("/api/grade", hm.gradingHandler.Grade)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware)
	{
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.POST("/migrate", hm.quizHandler.MigrateLegacyQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/lock", hm.quizHandler.LockQuiz)
			quizzes.POST("/:id/unlock", hm.quizHandler.UnlockQuiz)
			quizzes.GET("/:id/submissions", hm.quizHandler.GetQuizSubmissions)
			quizzes.GET("/:id/export", hm.quizHandler.ExportQuizResults)
		}

		classes := v1.Group("/classes")
		{
			classes.POST("", hm.classHandler.CreateClass)
			classes.GET("", hm.classHandler.ListClasses)
			classes.PUT("/:id", hm.classHandler.RenameClass)
			classes.DELETE("/:id", hm.classHandler.DeleteClass)
			classes.POST("/:id/archive", hm.classHandler.ArchiveClass)
			classes.POST("/:id/unarchive", hm.classHandler.UnarchiveClass)
			classes.POST("/:id/enrollments", hm.classHandler.EnrollStudent)
			classes.DELETE("/:id/enrollments/:student_id", hm.classHandler.UnenrollStudent)
			classes.GET("/:id/roster", hm.classHandler.GetRoster)
			classes.GET("/:id/submissions", hm.classHandler.GetClassSubmissions)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.GET("/overview", hm.attemptHandler.GetOverview)
			attempts.GET("/history", hm.attemptHandler.GetHistory)
			attempts.POST("/start/:quiz_id", hm.attemptHandler.StartAttempt)
			attempts.POST("/submit/:quiz_id", hm.attemptHandler.SubmitAttempt)
			attempts.DELETE("/:id", hm.attemptHandler.ReturnAttempt)
		}

		teacher := v1.Group("/teacher")
		{
			teacher.GET("/feed", hm.teacherHandler.GetFeed)
			teacher.POST("/emails", hm.teacherHandler.AddTeacherEmail)
			teacher.DELETE("/emails/:email", hm.teacherHandler.RemoveTeacherEmail)
		}

		v1.GET("/realtime/ledger", hm.realtimeHandler.StreamLedger)
	}
}
