package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/services"
	"github.com/intranet-suite/survey-service/internal/utils"
	"github.com/intranet-suite/survey-service/internal/validator"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
	validator     *validator.Validator
}

func NewSurveyHandler(
	surveyService services.SurveyService,
	validator *validator.Validator,
	logger utils.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		validator:     validator,
	}
}

// GetQuestions lists the questions of a subsection
// @Summary List questions
// @Tags surveys
// @Produce json
// @Param subsection_id path string true "Subsection id"
// @Success 200 {array} models.Question
// @Failure 500 {object} ErrorResponse
// @Router /surveys/{subsection_id}/questions [get]
func (h *SurveyHandler) GetQuestions(c *gin.Context) {
	questions, err := h.surveyService.GetQuestions(c.Request.Context(), c.Param("subsection_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetCategories lists every question category
// @Summary List categories
// @Tags surveys
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} ErrorResponse
// @Router /categories [get]
func (h *SurveyHandler) GetCategories(c *gin.Context) {
	categories, err := h.surveyService.GetCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateQuestion creates a new question
// @Summary Create question
// @Tags surveys
// @Accept json
// @Produce json
// @Param question body models.Question true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Router /questions [post]
func (h *SurveyHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.surveyService.CreateQuestion(c.Request.Context(), &question); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates an existing question
// @Summary Update question
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path string true "Question id"
// @Param question body models.Question true "Question data"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [put]
func (h *SurveyHandler) UpdateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	question.ID = c.Param("id")

	if err := h.surveyService.UpdateQuestion(c.Request.Context(), &question); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question from the catalog
// @Summary Delete question
// @Tags surveys
// @Param id path string true "Question id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *SurveyHandler) DeleteQuestion(c *gin.Context) {
	if err := h.surveyService.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateCategory creates a new category
// @Summary Create category
// @Tags surveys
// @Accept json
// @Produce json
// @Param category body models.Category true "Category data"
// @Success 201 {object} models.Category
// @Failure 400 {object} ErrorResponse
// @Router /categories [post]
func (h *SurveyHandler) CreateCategory(c *gin.Context) {
	h.LogRequest(c, "Creating category")

	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.surveyService.CreateCategory(c.Request.Context(), &category); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory removes a category
// @Summary Delete category
// @Tags surveys
// @Param id path string true "Category id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id} [delete]
func (h *SurveyHandler) DeleteCategory(c *gin.Context) {
	if err := h.surveyService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
