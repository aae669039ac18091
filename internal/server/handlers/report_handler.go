package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/service/dashboard"
	"github.com/mamadbah2/billing/internal/service/reporting"
)

// ReportHandler exposes the bucketed report and the dashboard summary.
type ReportHandler struct {
	reports   *reporting.Service
	dashboard *dashboard.Service
	logger    *zap.Logger
}

func NewReportHandler(reports *reporting.Service, dashboard *dashboard.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, dashboard: dashboard, logger: logger}
}

// Report builds the report for the from, to and months query parameters.
// Malformed values fall back to defaults instead of failing.
func (h *ReportHandler) Report(c *gin.Context) {
	report, err := h.reports.Build(c.Request.Context(), ownerID(c), h.query(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export appends the monthly series to the configured report sheet.
func (h *ReportHandler) Export(c *gin.Context) {
	result, err := h.reports.Export(c.Request.Context(), ownerID(c), h.query(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) query(c *gin.Context) reporting.Query {
	return reporting.Query{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Months: c.Query("months"),
	}
}
