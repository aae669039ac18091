package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/service/cash"
)

// CashHandler exposes drawer counts.
type CashHandler struct {
	svc    *cash.Service
	logger *zap.Logger
}

func NewCashHandler(svc *cash.Service, logger *zap.Logger) *CashHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashHandler{svc: svc, logger: logger}
}

func (h *CashHandler) Create(c *gin.Context) {
	var in cash.CreateInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	entry, err := h.svc.Create(c.Request.Context(), ownerID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// List returns entries, optionally bounded by the from and to query parameters.
func (h *CashHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), ownerID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
