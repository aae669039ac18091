package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/service/customers"
	"github.com/mamadbah2/billing/internal/service/products"
)

// CustomerHandler exposes customer CRUD.
type CustomerHandler struct {
	svc    *customers.Service
	logger *zap.Logger
}

func NewCustomerHandler(svc *customers.Service, logger *zap.Logger) *CustomerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerHandler{svc: svc, logger: logger}
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var in customers.Input
	if !bindJSON(c, h.logger, &in) {
		return
	}
	customer, err := h.svc.Create(c.Request.Context(), ownerID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.svc.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	var in customers.Input
	if !bindJSON(c, h.logger, &in) {
		return
	}
	customer, err := h.svc.Update(c.Request.Context(), ownerID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ProductHandler exposes product CRUD.
type ProductHandler struct {
	svc    *products.Service
	logger *zap.Logger
}

func NewProductHandler(svc *products.Service, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{svc: svc, logger: logger}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var in products.Input
	if !bindJSON(c, h.logger, &in) {
		return
	}
	product, err := h.svc.Create(c.Request.Context(), ownerID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.svc.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var in products.Input
	if !bindJSON(c, h.logger, &in) {
		return
	}
	product, err := h.svc.Update(c.Request.Context(), ownerID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
