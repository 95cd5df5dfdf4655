package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/services"
	"github.com/intranet-suite/survey-service/internal/utils"
	"github.com/intranet-suite/survey-service/internal/validator"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	validator      *validator.Validator
}

func NewAttemptHandler(
	attemptService services.AttemptService,
	validator *validator.Validator,
	logger utils.Logger,
) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		validator:      validator,
	}
}

// ===== REQUEST STRUCTURES =====

type StartAttemptRequest struct {
	SubsectionID string `json:"subsection_id" validate:"required"`
}

type RecordAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

type SetFilterRequest struct {
	Filter string `json:"filter" validate:"required,category_filter"`
}

// StartAttempt begins (or resumes) a timed attempt
// @Summary Start attempt
// @Description Starts a survey attempt for the authenticated user, resuming the countdown if one is already running
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body StartAttemptRequest true "Attempt target"
// @Success 201 {object} services.AttemptView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	h.LogRequest(c, "Starting attempt")

	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}

	var req StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	view, err := h.attemptService.Start(c.Request.Context(), userID, req.SubsectionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetAttempt returns the current attempt view
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param key path string true "Attempt key"
// @Success 200 {object} services.AttemptView
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{key} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	view, err := h.attemptService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RecordAnswer upserts the answer for one question
// @Summary Record answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param key path string true "Attempt key"
// @Param answer body RecordAnswerRequest true "Answer"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{key}/answer [put]
func (h *AttemptHandler) RecordAnswer(c *gin.Context) {
	var req RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	if err := h.attemptService.RecordAnswer(c.Request.Context(), c.Param("key"), req.QuestionID, req.Answer); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded"})
}

// NextQuestion advances the navigator
// @Summary Next question
// @Tags attempts
// @Produce json
// @Param key path string true "Attempt key"
// @Success 200 {object} services.AttemptView
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{key}/next [post]
func (h *AttemptHandler) NextQuestion(c *gin.Context) {
	view, err := h.attemptService.Next(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// PreviousQuestion steps the navigator back
// @Summary Previous question
// @Tags attempts
// @Produce json
// @Param key path string true "Attempt key"
// @Success 200 {object} services.AttemptView
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{key}/previous [post]
func (h *AttemptHandler) PreviousQuestion(c *gin.Context) {
	view, err := h.attemptService.Previous(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetCategoryFilter restricts navigation to one category
// @Summary Set category filter
// @Tags attempts
// @Accept json
// @Produce json
// @Param key path string true "Attempt key"
// @Param filter body SetFilterRequest true "Category id or \"all\""
// @Success 200 {object} services.AttemptView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{key}/filter [put]
func (h *AttemptHandler) SetCategoryFilter(c *gin.Context) {
	var req SetFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	view, err := h.attemptService.SetCategoryFilter(c.Request.Context(), c.Param("key"), req.Filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RequestSubmit opens the submit confirmation step
// @Summary Request submit
// @Tags attempts
// @Produce json
// @Param key path string true "Attempt key"
// @Success 200 {object} services.AttemptView
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{key}/submit [post]
func (h *AttemptHandler) RequestSubmit(c *gin.Context) {
	h.LogRequest(c, "Submit requested")

	view, err := h.attemptService.RequestSubmit(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelSubmit dismisses the confirmation step
// @Summary Cancel submit
// @Tags attempts
// @Produce json
// @Param key path string true "Attempt key"
// @Success 200 {object} services.AttemptView
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{key}/submit [delete]
func (h *AttemptHandler) CancelSubmit(c *gin.Context) {
	view, err := h.attemptService.CancelSubmit(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ConfirmSubmit grades and delivers the recorded answers
// @Summary Confirm submit
// @Tags attempts
// @Produce json
// @Param key path string true "Attempt key"
// @Success 200 {object} services.AttemptView
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /attempts/{key}/submit/confirm [post]
func (h *AttemptHandler) ConfirmSubmit(c *gin.Context) {
	h.LogRequest(c, "Submit confirmed")

	view, err := h.attemptService.ConfirmSubmit(c.Request.Context(), c.Param("key"), c.GetHeader("Authorization"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// TimeRemaining returns the seconds left on the countdown
// @Summary Time remaining
// @Tags attempts
// @Produce json
// @Param key path string true "Attempt key"
// @Success 200 {object} map[string]int
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{key}/time [get]
func (h *AttemptHandler) TimeRemaining(c *gin.Context) {
	remaining, err := h.attemptService.TimeRemaining(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining_seconds": remaining})
}

// CloseAttempt drops the in-memory session, keeping the countdown persisted
// @Summary Close attempt
// @Tags attempts
// @Param key path string true "Attempt key"
// @Success 204
// @Router /attempts/{key} [delete]
func (h *AttemptHandler) CloseAttempt(c *gin.Context) {
	h.attemptService.Close(c.Param("key"))
	c.Status(http.StatusNoContent)
}
