package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/services"
)

type NodeHandler struct {
	log       *logger.Logger
	hierarchy services.HierarchyService
}

func NewNodeHandler(log *logger.Logger, hsvc services.HierarchyService) *NodeHandler {
	return &NodeHandler{
		log:       log.With("handler", "NodeHandler"),
		hierarchy: hsvc,
	}
}

type createNodeRequest struct {
	ParentID  *uuid.UUID `json:"parent_id"`
	Name      string     `json:"name" binding:"required"`
	SortOrder int        `json:"sort_order"`
	NodeType  string     `json:"node_type"`
	DataType  string     `json:"data_type"`

	PriceImpactType  string          `json:"price_impact_type"`
	PriceImpactValue decimal.Decimal `json:"price_impact_value"`
	PriceFormula     string          `json:"price_formula"`

	WeightImpactType  string          `json:"weight_impact_type"`
	WeightImpactValue decimal.Decimal `json:"weight_impact_value"`
	WeightFormula     string          `json:"weight_formula"`

	TechnicalPropertyType string `json:"technical_property_type"`
	TechnicalFormula      string `json:"technical_formula"`
	FormulaAlias          string `json:"formula_alias"`

	DisplayMeta     datatypes.JSON `json:"display_meta"`
	ValidationRules datatypes.JSON `json:"validation_rules"`
}

// POST /api/manufacturing-types/:id/nodes
func (h *NodeHandler) Create(c *gin.Context) {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manufacturing type id", "kind": "bad_request"})
		return
	}
	var req createNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}

	node, err := h.hierarchy.CreateNode(c.Request.Context(), services.CreateNodeInput{
		ManufacturingTypeID: typeID,
		ParentID:            req.ParentID,
		Name:                req.Name,
		SortOrder:           req.SortOrder,
		NodeType:            req.NodeType,
		DataType:            req.DataType,

		PriceImpactType:  req.PriceImpactType,
		PriceImpactValue: req.PriceImpactValue,
		PriceFormula:     req.PriceFormula,

		WeightImpactType:  req.WeightImpactType,
		WeightImpactValue: req.WeightImpactValue,
		WeightFormula:     req.WeightFormula,

		TechnicalPropertyType: req.TechnicalPropertyType,
		TechnicalFormula:      req.TechnicalFormula,
		FormulaAlias:          req.FormulaAlias,

		DisplayMeta:     req.DisplayMeta,
		ValidationRules: req.ValidationRules,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

// GET /api/nodes/:id
func (h *NodeHandler) Get(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	node, err := h.hierarchy.GetNode(c.Request.Context(), nodeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

type renameNodeRequest struct {
	Name string `json:"name" binding:"required"`
}

// PATCH /api/nodes/:id/rename
func (h *NodeHandler) Rename(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	var req renameNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	node, err := h.hierarchy.RenameNode(c.Request.Context(), nodeID, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

type moveNodeRequest struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
}

// PATCH /api/nodes/:id/move
func (h *NodeHandler) Move(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	var req moveNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	node, err := h.hierarchy.MoveNode(c.Request.Context(), nodeID, req.NewParentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// DELETE /api/nodes/:id?cascade=true
func (h *NodeHandler) Delete(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	cascade := c.Query("cascade") == "true"
	if err := h.hierarchy.DeleteNode(c.Request.Context(), nodeID, cascade); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/nodes/:id/descendants
func (h *NodeHandler) Descendants(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	nodes, err := h.hierarchy.GetDescendants(c.Request.Context(), nodeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// GET /api/nodes/:id/ancestors
func (h *NodeHandler) Ancestors(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id", "kind": "bad_request"})
		return
	}
	nodes, err := h.hierarchy.GetAncestors(c.Request.Context(), nodeID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// GET /api/manufacturing-types/:id/tree?root_id=...
func (h *NodeHandler) Tree(c *gin.Context) {
	typeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manufacturing type id", "kind": "bad_request"})
		return
	}
	var rootID *uuid.UUID
	if raw := c.Query("root_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid root_id", "kind": "bad_request"})
			return
		}
		rootID = &parsed
	}
	tree, err := h.hierarchy.GetTree(c.Request.Context(), typeID, rootID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}
