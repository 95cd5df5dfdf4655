package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
	"github.com/intranet-suite/survey-service/internal/services"
	"github.com/intranet-suite/survey-service/internal/utils"
)

type BulletinHandler struct {
	BaseHandler
	bulletinService services.BulletinService
}

func NewBulletinHandler(bulletinService services.BulletinService, logger utils.Logger) *BulletinHandler {
	return &BulletinHandler{
		BaseHandler:     NewBaseHandler(logger),
		bulletinService: bulletinService,
	}
}

// CreatePost publishes an announcement or calendar event
// @Summary Create post
// @Tags bulletins
// @Accept json
// @Produce json
// @Param post body models.BulletinPost true "Post data"
// @Success 201 {object} models.BulletinPost
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /bulletins [post]
func (h *BulletinHandler) CreatePost(c *gin.Context) {
	h.LogRequest(c, "Creating bulletin post")

	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}

	var post models.BulletinPost
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	post.CreatedBy = userID

	if err := h.bulletinService.CreatePost(c.Request.Context(), &post); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetPost returns one post
// @Summary Get post
// @Tags bulletins
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} models.BulletinPost
// @Failure 404 {object} ErrorResponse
// @Router /bulletins/{id} [get]
func (h *BulletinHandler) GetPost(c *gin.Context) {
	post, err := h.bulletinService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListPosts lists posts, optionally filtered by kind and date range
// @Summary List posts
// @Tags bulletins
// @Produce json
// @Param kind query string false "announcement or event"
// @Param from query string false "RFC 3339 lower bound on starts_at"
// @Param to query string false "RFC 3339 upper bound on starts_at"
// @Success 200 {array} models.BulletinPost
// @Failure 400 {object} ErrorResponse
// @Router /bulletins [get]
func (h *BulletinHandler) ListPosts(c *gin.Context) {
	filters := repositories.BulletinFilters{}

	if kind := c.Query("kind"); kind != "" {
		bulletinKind := models.BulletinKind(kind)
		filters.Kind = &bulletinKind
	}
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid \"from\" timestamp"})
			return
		}
		filters.DateFrom = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid \"to\" timestamp"})
			return
		}
		filters.DateTo = &parsed
	}

	posts, err := h.bulletinService.ListPosts(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// DeletePost removes a post
// @Summary Delete post
// @Tags bulletins
// @Param id path string true "Post id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /bulletins/{id} [delete]
func (h *BulletinHandler) DeletePost(c *gin.Context) {
	if err := h.bulletinService.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
