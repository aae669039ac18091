package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/service/invoicing"
)

// InvoiceHandler exposes invoices.
type InvoiceHandler struct {
	svc    *invoicing.Service
	logger *zap.Logger
}

func NewInvoiceHandler(svc *invoicing.Service, logger *zap.Logger) *InvoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceHandler{svc: svc, logger: logger}
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var in invoicing.CreateInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	invoice, err := h.svc.Create(c.Request.Context(), ownerID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.svc.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	var in invoicing.UpdateInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	invoice, err := h.svc.Update(c.Request.Context(), ownerID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Send issues a draft invoice to its customer.
func (h *InvoiceHandler) Send(c *gin.Context) {
	invoice, err := h.svc.Send(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
