package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietcart/logistics/internal/application/orders"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// Partner surface. Errors stay in English.

func (h *Handlers) listShopOrders(c *gin.Context) {
	offset, limit := pagination(c)
	actor := actorFrom(c)
	shopID := c.Query("shop_id")
	if shopID == "" {
		shopID = actor.ShopID
	}
	list, total, err := h.orders.ListShopOrders(c.Request.Context(), actor, shopID, offset, limit)
	if err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"orders": list, "total": total})
}

func (h *Handlers) confirmSubOrder(c *gin.Context) {
	if err := h.orders.ConfirmSubOrder(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"confirmed": true})
}

func (h *Handlers) startProcessing(c *gin.Context) {
	if err := h.orders.StartProcessing(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"processing": true})
}

type packRequest struct {
	ProviderCode  string         `json:"provider_code"`
	PickupAddr    addressRequest `json:"pickup_address" binding:"required"`
	ContactName   string         `json:"contact_name" binding:"required"`
	ContactPhone  string         `json:"contact_phone" binding:"required"`
	WeightGrams   int            `json:"weight_grams" binding:"required,min=1"`
	Note          string         `json:"note"`
}

func (h *Handlers) packSubOrder(c *gin.Context) {
	var req packRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, false, "body", err.Error())
		return
	}
	sh, err := h.orders.PackSubOrder(c.Request.Context(), actorFrom(c), c.Param("id"), orders.PackRequest{
		ProviderCode: req.ProviderCode,
		PickupAddr:   req.PickupAddr.toDomain(),
		PickupContact: shared.Contact{
			Name:  req.ContactName,
			Phone: req.ContactPhone,
		},
		WeightGrams: req.WeightGrams,
		Note:        req.Note,
	})
	if err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusCreated, sh)
}

func (h *Handlers) cancelSubOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, false, "reason", "is required")
		return
	}
	if err := h.orders.CancelSubOrder(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"cancelled": true})
}

func (h *Handlers) approveReturn(c *gin.Context) {
	if err := h.orders.ApproveReturn(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"approved": true})
}

func (h *Handlers) rejectReturn(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, false, "reason", "is required")
		return
	}
	if err := h.orders.RejectReturn(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"rejected": true})
}

func (h *Handlers) markReturned(c *gin.Context) {
	if err := h.orders.MarkReturned(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"returned": true})
}

func (h *Handlers) refundReturned(c *gin.Context) {
	if err := h.orders.RefundReturned(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"refunded": true})
}

// Provider configuration

type providerConfigRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	ShopCode  string `json:"shop_code"`
	Sandbox   bool   `json:"sandbox"`
	Enabled   bool   `json:"enabled"`
	IsDefault bool   `json:"is_default"`
}

func (h *Handlers) saveProviderConfig(c *gin.Context) {
	var req providerConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, false, "body", err.Error())
		return
	}
	actor := actorFrom(c)
	err := h.facade.SaveProviderConfig(c.Request.Context(), actor.ShopID, c.Param("code"), shipping.Credentials{
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		ShopCode:  req.ShopCode,
		Sandbox:   req.Sandbox,
	}, req.Enabled, req.IsDefault)
	if err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"saved": true})
}

func (h *Handlers) listProviderConfigs(c *gin.Context) {
	views, err := h.facade.ListProviderConfigs(c.Request.Context(), actorFrom(c).ShopID)
	if err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"providers": views})
}

func (h *Handlers) testProviderConnection(c *gin.Context) {
	if err := h.facade.TestProviderConnection(c.Request.Context(), actorFrom(c).ShopID, c.Param("code")); err != nil {
		respondError(c, err, false)
		return
	}
	respond(c, http.StatusOK, gin.H{"ok": true})
}
