package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/services"
)

// Fractional digits kept when rendering totals. Full precision is
// preserved internally; rounding happens only here, at the
// presentation boundary.
const (
	priceDisplayScale  = 2
	weightDisplayScale = 3
)

type ConfigurationHandler struct {
	log           *logger.Logger
	configService services.ConfigurationService
	calcService   services.CalculationService
}

func NewConfigurationHandler(log *logger.Logger, csvc services.ConfigurationService, calc services.CalculationService) *ConfigurationHandler {
	return &ConfigurationHandler{
		log:           log.With("handler", "ConfigurationHandler"),
		configService: csvc,
		calcService:   calc,
	}
}

type createConfigurationRequest struct {
	ManufacturingTypeID uuid.UUID `json:"manufacturing_type_id" binding:"required"`
	Name                string    `json:"name" binding:"required"`
}

// POST /api/configurations
func (h *ConfigurationHandler) Create(c *gin.Context) {
	var req createConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	cfg, err := h.configService.CreateConfiguration(c.Request.Context(), req.ManufacturingTypeID, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// GET /api/configurations/:id
func (h *ConfigurationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": "bad_request"})
		return
	}
	cfg, err := h.configService.GetConfiguration(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GET /api/configurations/:id/selections
func (h *ConfigurationHandler) ListSelections(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": "bad_request"})
		return
	}
	selections, err := h.configService.ListSelections(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, selections)
}

// PUT /api/configurations/:id/selections/:nodeID
func (h *ConfigurationHandler) SetSelection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid configuration id", "kind": "bad_request"})
		return
	}
	nodeID, err := uuid.Parse(c.Param("nodeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	var value services.SelectionValueInput
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	sel, err := h.configService.SetSelection(c.Request.Context(), id, nodeID, value)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

// DELETE /api/configurations/:id/selections/:nodeID
func (h *ConfigurationHandler) RemoveSelection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid configuration id", "kind": "bad_request"})
		return
	}
	nodeID, err := uuid.Parse(c.Param("nodeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	if err := h.configService.RemoveSelection(c.Request.Context(), id, nodeID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/configurations/:id/calculate
func (h *ConfigurationHandler) Calculate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": "bad_request"})
		return
	}
	result, err := h.calcService.Calculate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, renderCalculation(result))
}

// GET /api/configurations/:id/preview
// Same computation as Calculate, nothing written back.
func (h *ConfigurationHandler) Preview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id", "kind": "bad_request"})
		return
	}
	result, err := h.calcService.Preview(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, renderCalculation(result))
}

func renderCalculation(result *services.CalculationResult) gin.H {
	breakdown := make([]gin.H, 0, len(result.Breakdown))
	for _, line := range result.Breakdown {
		entry := gin.H{
			"selection_id": line.SelectionID,
			"node_id":      line.NodeID,
			"price_delta":  line.PriceDelta.Round(priceDisplayScale),
			"weight_delta": line.WeightDelta.Round(weightDisplayScale),
		}
		if line.Technical != nil {
			entry["technical"] = line.Technical
		}
		breakdown = append(breakdown, entry)
	}
	return gin.H{
		"total_price":    result.TotalPrice.Round(priceDisplayScale),
		"total_weight":   result.TotalWeight.Round(weightDisplayScale),
		"technical_data": result.TechnicalData,
		"breakdown":      breakdown,
	}
}
