package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/service/company"
)

// CompanyHandler exposes the caller's company profile.
type CompanyHandler struct {
	svc    *company.Service
	logger *zap.Logger
}

func NewCompanyHandler(svc *company.Service, logger *zap.Logger) *CompanyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyHandler{svc: svc, logger: logger}
}

func (h *CompanyHandler) Get(c *gin.Context) {
	profile, err := h.svc.Get(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *CompanyHandler) Create(c *gin.Context) {
	var in company.Input
	if !bindJSON(c, h.logger, &in) {
		return
	}
	profile, err := h.svc.Create(c.Request.Context(), ownerID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	var in company.Input
	if !bindJSON(c, h.logger, &in) {
		return
	}
	profile, err := h.svc.Update(c.Request.Context(), ownerID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
