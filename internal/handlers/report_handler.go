package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/export"
	"saldo/internal/services"
)

// ReportHandler handles report and export requests.
type ReportHandler struct {
	reportService services.ReportServicer
	exporter      *export.Exporter
	auditService  services.AuditServicer
}

// NewReportHandler creates a new ReportHandler. A nil or disabled exporter
// turns off uploads; downloads always work.
func NewReportHandler(reportService services.ReportServicer, exporter *export.Exporter, auditService services.AuditServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService, exporter: exporter, auditService: auditService}
}

// ReportQuery holds the query parameters of a report.
type ReportQuery struct {
	Type      string `form:"type" binding:"required,report_type"`
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
	GroupBy   string `form:"group_by" binding:"omitempty,report_group_by"`
}

// ExportResponse reports where an uploaded export was stored.
type ExportResponse struct {
	URI string `json:"uri"`
}

func (h *ReportHandler) bindReport(c *gin.Context) (services.ReportRequest, error) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return services.ReportRequest{}, bindError(err)
	}
	start, err := parseDate("start_date", q.StartDate)
	if err != nil {
		return services.ReportRequest{}, err
	}
	end, err := parseDate("end_date", q.EndDate)
	if err != nil {
		return services.ReportRequest{}, err
	}
	groupBy := services.ReportGroupBy(q.GroupBy)
	if groupBy == "" {
		groupBy = services.GroupByCategory
	}
	return services.ReportRequest{
		Type:      services.ReportType(q.Type),
		StartDate: start,
		EndDate:   end,
		GroupBy:   groupBy,
	}, nil
}

// GetReport handles generating a grouped report
// @Summary     Generate report
// @Description Group the user's transactions between two dates (end inclusive) by category, date or account
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       type       query string true  "income, expense or all"
// @Param       start_date query string true  "Start date (YYYY-MM-DD)"
// @Param       end_date   query string true  "End date, inclusive (YYYY-MM-DD)"
// @Param       group_by   query string false "category (default), date or account"
// @Success     200 {object} services.ReportResult "Report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	req, err := h.bindReport(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.GenerateReport(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ExportReport handles exporting a report as CSV
// @Summary     Export report
// @Description Render a report as CSV. With destination=storage the file is uploaded to the configured bucket instead of downloaded.
// @Tags        reports
// @Produce     text/csv
// @Produce     json
// @Security    BearerAuth
// @Param       type        query string true  "income, expense or all"
// @Param       start_date  query string true  "Start date (YYYY-MM-DD)"
// @Param       end_date    query string true  "End date, inclusive (YYYY-MM-DD)"
// @Param       group_by    query string false "category (default), date or account"
// @Param       destination query string false "download (default) or storage"
// @Success     200 {string} string "CSV file"
// @Success     201 {object} ExportResponse "Uploaded export"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Export storage not configured"
// @Router      /reports/export [get]
func (h *ReportHandler) ExportReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	destination := c.DefaultQuery("destination", "download")
	if destination != "download" && destination != "storage" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "destination must be download or storage"))
		return
	}
	if destination == "storage" && !h.exporter.Enabled() {
		respondWithError(c, apperrors.ErrExportDisabled)
		return
	}

	req, err := h.bindReport(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	report, err := h.reportService.GenerateReport(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if destination == "storage" {
		uri, err := h.exporter.Upload(c.Request.Context(), userID, report)
		if err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		h.auditService.Log(c.Request.Context(), userID, "EXPORT_REPORT", "report", "", c.ClientIP(),
			map[string]any{"uri": uri, "type": report.Type, "group_by": report.GroupBy})
		c.JSON(http.StatusCreated, ExportResponse{URI: uri})
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, report); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	filename := fmt.Sprintf("report_%s_%s_%s.csv",
		report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"), report.Type)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
