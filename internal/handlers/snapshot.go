package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/services"
)

type SnapshotHandler struct {
	log             *logger.Logger
	snapshotService services.SnapshotService
}

func NewSnapshotHandler(log *logger.Logger, ssvc services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		log:             log.With("handler", "SnapshotHandler"),
		snapshotService: ssvc,
	}
}

type createSnapshotRequest struct {
	Kind       string     `json:"kind"`
	ValidUntil *time.Time `json:"valid_until"`
}

// POST /api/configurations/:id/snapshots
func (h *SnapshotHandler) Create(c *gin.Context) {
	configurationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid configuration id", "kind": "bad_request"})
		return
	}
	var req createSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "bad_request"})
		return
	}
	snap, err := h.snapshotService.CreateSnapshot(c.Request.Context(), configurationID, req.Kind, req.ValidUntil)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GET /api/configurations/:id/snapshots
func (h *SnapshotHandler) ListForConfiguration(c *gin.Context) {
	configurationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid configuration id", "kind": "bad_request"})
		return
	}
	snaps, err := h.snapshotService.ListSnapshots(c.Request.Context(), configurationID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}

// GET /api/snapshots/:id
func (h *SnapshotHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot id", "kind": "bad_request"})
		return
	}
	snap, err := h.snapshotService.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
