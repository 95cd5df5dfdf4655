package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intranet-suite/survey-service/internal/repositories"
	"github.com/intranet-suite/survey-service/internal/services"
	"github.com/intranet-suite/survey-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GetSubsectionReport aggregates scores for a subsection
// @Summary Subsection report
// @Tags reports
// @Produce json
// @Param subsection_id path string true "Subsection id"
// @Success 200 {object} services.SubsectionReport
// @Failure 500 {object} ErrorResponse
// @Router /reports/{subsection_id} [get]
func (h *ReportHandler) GetSubsectionReport(c *gin.Context) {
	report, err := h.reportService.GetSubsectionReport(c.Request.Context(), c.Param("subsection_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportSubsectionReport downloads the report as a spreadsheet
// @Summary Export subsection report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param subsection_id path string true "Subsection id"
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Router /reports/{subsection_id}/export [get]
func (h *ReportHandler) ExportSubsectionReport(c *gin.Context) {
	h.LogRequest(c, "Exporting subsection report")

	subsectionID := c.Param("subsection_id")
	payload, err := h.reportService.ExportSubsectionReport(c.Request.Context(), subsectionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("report-%s-%s.xlsx", subsectionID, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}

// GetMyResponses lists the authenticated user's stored responses
// @Summary My responses
// @Tags reports
// @Produce json
// @Param subsection_id query string false "Subsection id"
// @Success 200 {array} models.ResponseRecord
// @Failure 401 {object} ErrorResponse
// @Router /responses/me [get]
func (h *ReportHandler) GetMyResponses(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}

	filters := repositories.ResponseFilters{}
	if subsectionID := c.Query("subsection_id"); subsectionID != "" {
		filters.SubsectionID = &subsectionID
	}

	responses, err := h.reportService.GetUserResponses(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}
