package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/services"
	"github.com/intranet-suite/survey-service/internal/utils"
)

type DocumentHandler struct {
	BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(logger),
		documentService: documentService,
	}
}

// ListSections returns the document center tree
// @Summary List sections
// @Tags documents
// @Produce json
// @Success 200 {array} models.Section
// @Router /sections [get]
func (h *DocumentHandler) ListSections(c *gin.Context) {
	sections, err := h.documentService.ListSections(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// CreateSection adds a top-level section
// @Summary Create section
// @Tags documents
// @Accept json
// @Produce json
// @Param section body models.Section true "Section data"
// @Success 201 {object} models.Section
// @Failure 400 {object} ErrorResponse
// @Router /sections [post]
func (h *DocumentHandler) CreateSection(c *gin.Context) {
	var section models.Section
	if err := c.ShouldBindJSON(&section); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.documentService.CreateSection(c.Request.Context(), &section); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// ListSubsections lists the subsections of a section
// @Summary List subsections
// @Tags documents
// @Produce json
// @Param id path string true "Section id"
// @Success 200 {array} models.Subsection
// @Router /sections/{id}/subsections [get]
func (h *DocumentHandler) ListSubsections(c *gin.Context) {
	subsections, err := h.documentService.ListSubsections(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subsections)
}

// CreateSubsection adds a subsection to a section
// @Summary Create subsection
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Section id"
// @Param subsection body models.Subsection true "Subsection data"
// @Success 201 {object} models.Subsection
// @Failure 400 {object} ErrorResponse
// @Router /sections/{id}/subsections [post]
func (h *DocumentHandler) CreateSubsection(c *gin.Context) {
	var subsection models.Subsection
	if err := c.ShouldBindJSON(&subsection); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	subsection.SectionID = c.Param("id")

	if err := h.documentService.CreateSubsection(c.Request.Context(), &subsection); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subsection)
}

// GetSubsection returns one subsection with its section
// @Summary Get subsection
// @Tags documents
// @Produce json
// @Param id path string true "Subsection id"
// @Success 200 {object} models.Subsection
// @Failure 404 {object} ErrorResponse
// @Router /subsections/{id} [get]
func (h *DocumentHandler) GetSubsection(c *gin.Context) {
	subsection, err := h.documentService.GetSubsection(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subsection)
}

// ListFiles lists the file records of a subsection
// @Summary List files
// @Tags documents
// @Produce json
// @Param id path string true "Subsection id"
// @Success 200 {array} models.DocumentFile
// @Router /subsections/{id}/files [get]
func (h *DocumentHandler) ListFiles(c *gin.Context) {
	files, err := h.documentService.ListFiles(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// CreateFile registers an uploaded file's metadata
// @Summary Register file
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Subsection id"
// @Param file body models.DocumentFile true "File metadata"
// @Success 201 {object} models.DocumentFile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /subsections/{id}/files [post]
func (h *DocumentHandler) CreateFile(c *gin.Context) {
	h.LogRequest(c, "Registering document file")

	var file models.DocumentFile
	if err := c.ShouldBindJSON(&file); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	file.SubsectionID = c.Param("id")
	if userID, ok := h.extractUserID(c).(string); ok {
		file.UploadedBy = userID
	}

	if err := h.documentService.CreateFile(c.Request.Context(), &file); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// DeleteFile removes a file record
// @Summary Delete file
// @Tags documents
// @Param id path string true "File id"
// @Success 204
// @Router /files/{id} [delete]
func (h *DocumentHandler) DeleteFile(c *gin.Context) {
	if err := h.documentService.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
