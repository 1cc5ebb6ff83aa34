package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
)

// Shipper surface. Errors localize to Vietnamese.

// shipperID resolves the acting courier's shipper profile from their user
// account.
func (h *Handlers) shipperID(c *gin.Context) (string, bool) {
	actor := actorFrom(c)
	sp, err := h.shippers.FindByUserID(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err, true)
		return "", false
	}
	return sp.ID, true
}

func (h *Handlers) setPresence(c *gin.Context) {
	var req struct {
		Online    bool `json:"online"`
		Available bool `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, true, "body", err.Error())
		return
	}
	id, ok := h.shipperID(c)
	if !ok {
		return
	}
	if err := h.tracking.SetPresence(c.Request.Context(), id, req.Online, req.Available); err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"online": req.Online, "available": req.Available})
}

type locationRequest struct {
	ShipmentID string  `json:"shipment_id"`
	Lat        float64 `json:"lat" binding:"required"`
	Lng        float64 `json:"lng" binding:"required"`
	Heading    float64 `json:"heading"`
	Speed      float64 `json:"speed"`
	Accuracy   float64 `json:"accuracy"`
}

func (h *Handlers) ingestLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, true, "body", err.Error())
		return
	}
	id, ok := h.shipperID(c)
	if !ok {
		return
	}
	err := h.tracking.IngestLocation(c.Request.Context(), tracking.LocationSample{
		ShipperID:  id,
		ShipmentID: req.ShipmentID,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Heading:    req.Heading,
		Speed:      req.Speed,
		Accuracy:   req.Accuracy,
	})
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusAccepted, gin.H{"accepted": true})
}

func (h *Handlers) recordProgress(c *gin.Context) {
	var req struct {
		Status  string `json:"status" binding:"required"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, true, "status", "is required")
		return
	}
	id, ok := h.shipperID(c)
	if !ok {
		return
	}
	err := h.facade.RecordShipperProgress(c.Request.Context(), id, c.Param("id"), shipping.UnifiedStatus(req.Status), req.Message)
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"recorded": true})
}

func (h *Handlers) collectCOD(c *gin.Context) {
	id, ok := h.shipperID(c)
	if !ok {
		return
	}
	if err := h.facade.CollectCOD(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"collected": true})
}

func (h *Handlers) listCODDue(c *gin.Context) {
	id, ok := h.shipperID(c)
	if !ok {
		return
	}
	list, err := h.facade.ListCODDue(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"shipments": list})
}

func (h *Handlers) lastLocation(c *gin.Context) {
	sample, err := h.tracking.LastLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, sample)
}

func (h *Handlers) locationTrace(c *gin.Context) {
	actor := actorFrom(c)
	if !actor.IsAdmin() {
		respondError(c, shared.ErrForbidden("read location traces"), false)
		return
	}
	respond(c, http.StatusOK, gin.H{"samples": h.tracking.Trace(c.Param("id"))})
}
