package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/vietcart/logistics/internal/application/orders"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// Customer surface. All errors localize to Vietnamese.

type checkoutItemRequest struct {
	ShopID    string          `json:"shop_id" binding:"required"`
	ProductID string          `json:"product_id" binding:"required"`
	VariantID string          `json:"variant_id"`
	Name      string          `json:"name" binding:"required"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Image     string          `json:"image"`
}

type checkoutRequest struct {
	PaymentMethod string                     `json:"payment_method" binding:"required,oneof=cod momo vnpay zalopay"`
	ShippingName  string                     `json:"shipping_name" binding:"required"`
	ShippingPhone string                     `json:"shipping_phone" binding:"required"`
	ShippingAddr  addressRequest             `json:"shipping_address" binding:"required"`
	Items         []checkoutItemRequest      `json:"items" binding:"required,min=1,dive"`
	ShippingFees  map[string]decimal.Decimal `json:"shipping_fees"`
	DiscountTotal decimal.Decimal            `json:"discount_total"`
}

type addressRequest struct {
	Line     string  `json:"line" binding:"required"`
	Ward     string  `json:"ward"`
	District string  `json:"district" binding:"required"`
	City     string  `json:"city" binding:"required"`
	Region   string  `json:"region" binding:"required,oneof=north central south"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func (a addressRequest) toDomain() shared.Address {
	return shared.Address{
		Line:     a.Line,
		Ward:     a.Ward,
		District: a.District,
		City:     a.City,
		Region:   shared.Region(a.Region),
		Lat:      a.Lat,
		Lng:      a.Lng,
	}
}

func (h *Handlers) placeOrder(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, true, "body", err.Error())
		return
	}

	items := make([]orders.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.CheckoutItem{
			ShopID:    it.ShopID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			SKU:       it.SKU,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}

	o, err := h.orders.PlaceOrder(c.Request.Context(), actorFrom(c), orders.CheckoutRequest{
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		ShippingName:  req.ShippingName,
		ShippingPhone: req.ShippingPhone,
		ShippingAddr:  req.ShippingAddr.toDomain(),
		Items:         items,
		ShippingFees:  req.ShippingFees,
		DiscountTotal: req.DiscountTotal,
	})
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusCreated, o)
}

func (h *Handlers) getOrder(c *gin.Context) {
	o, err := h.orders.GetOrder(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, o)
}

func (h *Handlers) listOrders(c *gin.Context) {
	offset, limit := pagination(c)
	list, total, err := h.orders.ListOrders(c.Request.Context(), actorFrom(c), offset, limit)
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"orders": list, "total": total})
}

func (h *Handlers) cancelOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if err := h.orders.CancelOrder(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason); err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"cancelled": true})
}

func (h *Handlers) confirmReceipt(c *gin.Context) {
	if err := h.orders.ConfirmReceipt(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"completed": true})
}

func (h *Handlers) requestReturn(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, true, "reason", "is required")
		return
	}
	if err := h.orders.RequestReturn(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason); err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"return_requested": true})
}

func (h *Handlers) coinBalance(c *gin.Context) {
	coins, err := h.orders.CoinBalance(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"coins": coins})
}

func (h *Handlers) timeline(c *gin.Context) {
	entries, err := h.tracking.Timeline(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"timeline": entries})
}

func (h *Handlers) getTracking(c *gin.Context) {
	info, err := h.facade.GetTracking(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, info)
}

type feeQuoteRequest struct {
	ShopID       string          `json:"shop_id" binding:"required"`
	PickupAddr   addressRequest  `json:"pickup_address" binding:"required"`
	DeliveryAddr addressRequest  `json:"delivery_address" binding:"required"`
	WeightGrams  int             `json:"weight_grams" binding:"required,min=1"`
	Value        decimal.Decimal `json:"value"`
	CODAmount    decimal.Decimal `json:"cod_amount"`
}

func (h *Handlers) quoteFees(c *gin.Context) {
	var req feeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, true, "body", err.Error())
		return
	}
	options, err := h.facade.QuoteFees(c.Request.Context(), shipping.FeeRequest{
		ShopID:       req.ShopID,
		PickupAddr:   req.PickupAddr.toDomain(),
		DeliveryAddr: req.DeliveryAddr.toDomain(),
		Package: shipping.Package{
			WeightGrams: req.WeightGrams,
			Value:       req.Value,
		},
		CODAmount: req.CODAmount,
	})
	if err != nil {
		respondError(c, err, true)
		return
	}
	respond(c, http.StatusOK, gin.H{"quotes": options.Quotes, "failures": options.Failures})
}
