package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
)

// OrderRepositoryGORM implements order.Repository using GORM
type OrderRepositoryGORM struct {
	db *gorm.DB
}

// NewOrderRepository creates a new GORM-based order repository
func NewOrderRepository(db *gorm.DB) *OrderRepositoryGORM {
	return &OrderRepositoryGORM{db: db}
}

// Create persists a new order aggregate with its sub-orders and items
func (r *OrderRepositoryGORM) Create(ctx context.Context, o *order.Order) error {
	model, err := orderToModel(o)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Save persists the current state of an order aggregate. Sub-orders are
// upserted by primary key; items are immutable and left untouched.
func (r *OrderRepositoryGORM) Save(ctx context.Context, o *order.Order) error {
	model, err := orderToModel(o)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subs := model.SubOrders
		model.SubOrders = nil
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		for i := range subs {
			sub := subs[i]
			sub.Items = nil
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"status", "shipper_id", "return_deadline", "updated_at", "delivered_at",
				}),
			}).Create(&sub).Error; err != nil {
				return fmt.Errorf("failed to save sub-order %s: %w", sub.ID, err)
			}
		}
		return nil
	})
}

// FindByID retrieves an order with sub-orders and items
func (r *OrderRepositoryGORM) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Preload("SubOrders").
		Preload("SubOrders.Items").
		Where("id = ?", id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return orderToDomain(&model)
}

// FindByNumber retrieves an order by its opaque order number
func (r *OrderRepositoryGORM) FindByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Preload("SubOrders").
		Preload("SubOrders.Items").
		Where("order_number = ?", orderNumber).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("order", orderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order by number: %w", err)
	}
	return orderToDomain(&model)
}

// FindBySubOrderID resolves the parent aggregate of a sub-order
func (r *OrderRepositoryGORM) FindBySubOrderID(ctx context.Context, subOrderID string) (*order.Order, error) {
	var sub SubOrderModel
	err := r.db.WithContext(ctx).Where("id = ?", subOrderID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound("sub-order", subOrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sub-order: %w", err)
	}
	return r.FindByID(ctx, sub.OrderID)
}

// ListByUser returns a page of a customer's orders, newest first
func (r *OrderRepositoryGORM) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*order.Order, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), offset, limit)
}

// ListByShop returns a page of orders containing a sub-order for the shop
func (r *OrderRepositoryGORM) ListByShop(ctx context.Context, shopID string, offset, limit int) ([]*order.Order, int64, error) {
	q := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&SubOrderModel{}).Select("order_id").Where("shop_id = ?", shopID))
	return r.list(ctx, q, offset, limit)
}

func (r *OrderRepositoryGORM) list(ctx context.Context, q *gorm.DB, offset, limit int) ([]*order.Order, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&OrderModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var models []OrderModel
	err := q.Model(&OrderModel{}).
		Preload("SubOrders").
		Preload("SubOrders.Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		o, err := orderToDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}

// Model conversion

func orderToModel(o *order.Order) (*OrderModel, error) {
	addr, err := json.Marshal(o.ShippingAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	model := &OrderModel{
		ID:            o.ID,
		UserID:        o.UserID,
		OrderNumber:   o.OrderNumber,
		Subtotal:      o.Subtotal,
		ShippingTotal: o.ShippingTotal,
		DiscountTotal: o.DiscountTotal,
		GrandTotal:    o.GrandTotal,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Status:        string(o.Status),
		ShippingName:  o.ShippingName,
		ShippingPhone: o.ShippingPhone,
		ShippingAddr:  string(addr),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		PaidAt:        o.PaidAt,
		CompletedAt:   o.CompletedAt,
		CancelledAt:   o.CancelledAt,
	}

	for _, so := range o.SubOrders {
		sub := SubOrderModel{
			ID:             so.ID,
			OrderID:        so.OrderID,
			ShopID:         so.ShopID,
			Subtotal:       so.Subtotal,
			ShippingFee:    so.ShippingFee,
			Total:          so.Total,
			Status:         string(so.Status),
			ShipperID:      so.ShipperID,
			ReturnDeadline: so.ReturnDeadline,
			CreatedAt:      so.CreatedAt,
			UpdatedAt:      so.UpdatedAt,
			DeliveredAt:    so.DeliveredAt,
		}
		for _, it := range so.Items {
			sub.Items = append(sub.Items, OrderItemModel{
				ID:         it.ID,
				SubOrderID: it.SubOrderID,
				ProductID:  it.ProductID,
				VariantID:  it.VariantID,
				Name:       it.Name,
				SKU:        it.SKU,
				UnitPrice:  it.UnitPrice,
				Quantity:   it.Quantity,
				TotalPrice: it.TotalPrice,
				Image:      it.Image,
			})
		}
		model.SubOrders = append(model.SubOrders, sub)
	}
	return model, nil
}

func orderToDomain(m *OrderModel) (*order.Order, error) {
	var addr shared.Address
	if m.ShippingAddr != "" {
		if err := json.Unmarshal([]byte(m.ShippingAddr), &addr); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}
	}

	o := &order.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		OrderNumber:   m.OrderNumber,
		Subtotal:      m.Subtotal,
		ShippingTotal: m.ShippingTotal,
		DiscountTotal: m.DiscountTotal,
		GrandTotal:    m.GrandTotal,
		PaymentMethod: order.PaymentMethod(m.PaymentMethod),
		PaymentStatus: order.PaymentStatus(m.PaymentStatus),
		Status:        order.Status(m.Status),
		ShippingName:  m.ShippingName,
		ShippingPhone: m.ShippingPhone,
		ShippingAddr:  addr,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		PaidAt:        m.PaidAt,
		CompletedAt:   m.CompletedAt,
		CancelledAt:   m.CancelledAt,
	}

	for i := range m.SubOrders {
		sm := m.SubOrders[i]
		so := &order.SubOrder{
			ID:             sm.ID,
			OrderID:        sm.OrderID,
			ShopID:         sm.ShopID,
			Subtotal:       sm.Subtotal,
			ShippingFee:    sm.ShippingFee,
			Total:          sm.Total,
			Status:         order.SubStatus(sm.Status),
			ShipperID:      sm.ShipperID,
			ReturnDeadline: sm.ReturnDeadline,
			CreatedAt:      sm.CreatedAt,
			UpdatedAt:      sm.UpdatedAt,
			DeliveredAt:    sm.DeliveredAt,
		}
		for j := range sm.Items {
			im := sm.Items[j]
			so.Items = append(so.Items, &order.Item{
				ID:         im.ID,
				SubOrderID: im.SubOrderID,
				ProductID:  im.ProductID,
				VariantID:  im.VariantID,
				Name:       im.Name,
				SKU:        im.SKU,
				UnitPrice:  im.UnitPrice,
				Quantity:   im.Quantity,
				TotalPrice: im.TotalPrice,
				Image:      im.Image,
			})
		}
		o.SubOrders = append(o.SubOrders, so)
	}
	return o, nil
}
