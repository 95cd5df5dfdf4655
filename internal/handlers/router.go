package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/auth"
	"github.com/intranet-suite/survey-service/internal/services"
	"github.com/intranet-suite/survey-service/internal/utils"
	"github.com/intranet-suite/survey-service/internal/validator"
)

type HandlerManager struct {
	attemptHandler  *AttemptHandler
	surveyHandler   *SurveyHandler
	reportHandler   *ReportHandler
	documentHandler *DocumentHandler
	bulletinHandler *BulletinHandler

	verifier auth.Verifier
	logger   utils.Logger
}

func NewHandlerManager(
	attemptService services.AttemptService,
	surveyService services.SurveyService,
	reportService services.ReportService,
	documentService services.DocumentService,
	bulletinService services.BulletinService,
	verifier auth.Verifier,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:  NewAttemptHandler(attemptService, validator, logger),
		surveyHandler:   NewSurveyHandler(surveyService, validator, logger),
		reportHandler:   NewReportHandler(reportService, logger),
		documentHandler: NewDocumentHandler(documentService, logger),
		bulletinHandler: NewBulletinHandler(bulletinService, logger),
		verifier:        verifier,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes, all behind authentication
	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(hm.verifier, hm.logger))
	{
		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.StartAttempt)
			attempts.GET("/:key", hm.attemptHandler.GetAttempt)
			attempts.DELETE("/:key", hm.attemptHandler.CloseAttempt)
			attempts.PUT("/:key/answer", hm.attemptHandler.RecordAnswer)
			attempts.POST("/:key/next", hm.attemptHandler.NextQuestion)
			attempts.POST("/:key/previous", hm.attemptHandler.PreviousQuestion)
			attempts.PUT("/:key/filter", hm.attemptHandler.SetCategoryFilter)
			attempts.POST("/:key/submit", hm.attemptHandler.RequestSubmit)
			attempts.DELETE("/:key/submit", hm.attemptHandler.CancelSubmit)
			attempts.POST("/:key/submit/confirm", hm.attemptHandler.ConfirmSubmit)
			attempts.GET("/:key/time", hm.attemptHandler.TimeRemaining)
		}

		// Survey catalog routes
		surveys := v1.Group("/surveys")
		{
			surveys.GET("/:subsection_id/questions", hm.surveyHandler.GetQuestions)
		}
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.surveyHandler.CreateQuestion)
			questions.PUT("/:id", hm.surveyHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.surveyHandler.DeleteQuestion)
		}
		categories := v1.Group("/categories")
		{
			categories.GET("", hm.surveyHandler.GetCategories)
			categories.POST("", hm.surveyHandler.CreateCategory)
			categories.DELETE("/:id", hm.surveyHandler.DeleteCategory)
		}

		// Reporting routes
		reports := v1.Group("/reports")
		{
			reports.GET("/:subsection_id", hm.reportHandler.GetSubsectionReport)
			reports.GET("/:subsection_id/export", hm.reportHandler.ExportSubsectionReport)
		}
		v1.GET("/responses/me", hm.reportHandler.GetMyResponses)

		// Document center routes
		sections := v1.Group("/sections")
		{
			sections.GET("", hm.documentHandler.ListSections)
			sections.POST("", hm.documentHandler.CreateSection)
			sections.GET("/:id/subsections", hm.documentHandler.ListSubsections)
			sections.POST("/:id/subsections", hm.documentHandler.CreateSubsection)
		}
		subsections := v1.Group("/subsections")
		{
			subsections.GET("/:id", hm.documentHandler.GetSubsection)
			subsections.GET("/:id/files", hm.documentHandler.ListFiles)
			subsections.POST("/:id/files", hm.documentHandler.CreateFile)
		}
		v1.DELETE("/files/:id", hm.documentHandler.DeleteFile)

		// Bulletin board routes
		bulletins := v1.Group("/bulletins")
		{
			bulletins.GET("", hm.bulletinHandler.ListPosts)
			bulletins.POST("", hm.bulletinHandler.CreatePost)
			bulletins.GET("/:id", hm.bulletinHandler.GetPost)
			bulletins.DELETE("/:id", hm.bulletinHandler.DeletePost)
		}
	}
}
