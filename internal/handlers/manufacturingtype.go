package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/services"
)

type ManufacturingTypeHandler struct {
	log         *logger.Logger
	typeService services.ManufacturingTypeService
	calcService services.CalculationService
}

func NewManufacturingTypeHandler(log *logger.Logger, tsvc services.ManufacturingTypeService, csvc services.CalculationService) *ManufacturingTypeHandler {
	return &ManufacturingTypeHandler{
		log:         log.With("handler", "ManufacturingTypeHandler"),
		typeService: tsvc,
		calcService: csvc,
	}
}

type createManufacturingTypeRequest struct {
	Name       string          `json:"name" binding:"required"`
	BasePrice  decimal.Decimal `json:"base_price"`
	BaseWeight decimal.Decimal `json:"base_weight"`
}

// POST /api/manufacturing-types
func (h *ManufacturingTypeHandler) Create(c *gin.Context) {
	var req createManufacturingTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	mt, err := h.typeService.Create(c.Request.Context(), req.Name, req.BasePrice, req.BaseWeight)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, mt)
}

// GET /api/manufacturing-types
func (h *ManufacturingTypeHandler) List(c *gin.Context) {
	list, err := h.typeService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/manufacturing-types/:id
func (h *ManufacturingTypeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": "bad_request"})
		return
	}
	mt, err := h.typeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mt)
}

// POST /api/manufacturing-types/:id/recalculate
// Recompute every configuration of the type after catalog edits.
func (h *ManufacturingTypeHandler) Recalculate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": "bad_request"})
		return
	}
	if err := h.calcService.RecalculateForType(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recalculated"})
}
