package shippingfacade

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/eventbus"
	"github.com/vietcart/logistics/internal/adapters/metrics"
	"github.com/vietcart/logistics/internal/adapters/provider"
	"github.com/vietcart/logistics/internal/domain/order"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/domain/tracking"
	"github.com/vietcart/logistics/internal/infrastructure/config"
	"github.com/vietcart/logistics/pkg/utils"
)

// webhookRetention bounds how long a processed webhook's dedupe key is
// remembered. Carriers redeliver within hours, not days.
const webhookRetention = 24 * time.Hour

// Cache is the slice of the redis adapter the facade uses.
type Cache interface {
	GetFeeQuote(ctx context.Context, key string) (*shipping.FeeQuote, bool, error)
	SetFeeQuote(ctx context.Context, key string, quote *shipping.FeeQuote, ttl time.Duration) error
	GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, bool, error)
	SetTracking(ctx context.Context, trackingNumber string, info *shipping.TrackingInfo, ttl time.Duration) error
	InvalidateTracking(ctx context.Context, trackingNumber string) error
	SeenWebhook(ctx context.Context, dedupeKey string, retention time.Duration) (bool, error)
	ForgetWebhook(ctx context.Context, dedupeKey string) error
}

// Facade is the single entry point for everything shipping-provider
// shaped: fee aggregation, shipment creation and cancellation, tracking
// reads, webhook intake, and per-shop provider configuration.
type Facade struct {
	registry  *provider.Registry
	vault     *provider.Vault
	configs   shipping.ProviderConfigRepository
	shipments shipping.ShipmentRepository
	orders    order.Repository
	events    tracking.EventRepository
	cache     Cache
	publisher eventbus.Publisher
	collector *metrics.ProviderMetricsCollector
	clock     shared.Clock
	cfg       *config.ProvidersConfig
	logger    *zap.Logger

	webhookLocks utils.KeyedMutex
}

// NewFacade wires the shipping facade
func NewFacade(
	registry *provider.Registry,
	vault *provider.Vault,
	configs shipping.ProviderConfigRepository,
	shipments shipping.ShipmentRepository,
	orders order.Repository,
	events tracking.EventRepository,
	cache Cache,
	publisher eventbus.Publisher,
	collector *metrics.ProviderMetricsCollector,
	cfg *config.ProvidersConfig,
	clock shared.Clock,
	logger *zap.Logger,
) *Facade {
	return &Facade{
		registry:  registry,
		vault:     vault,
		configs:   configs,
		shipments: shipments,
		orders:    orders,
		events:    events,
		cache:     cache,
		publisher: publisher,
		collector: collector,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// buildProvider resolves a provider instance bound to one shop's stored
// credentials. The in-house fleet needs no credentials and is buildable
// even when the shop never configured it.
func (f *Facade) buildProvider(ctx context.Context, shopID, providerCode string) (shipping.Provider, error) {
	if providerCode == provider.CodeInHouse {
		return f.registry.Build(&shipping.ProviderConfig{ProviderCode: provider.CodeInHouse})
	}

	cfg, err := f.configs.Find(ctx, shopID, providerCode)
	if err != nil {
		if shared.IsKind(err, shared.KindNotFound) {
			return nil, shared.NewError(shared.KindProviderNotConfigured,
				"provider %s is not configured for shop %s", providerCode, shopID)
		}
		return nil, err
	}
	if !cfg.IsEnabled {
		return nil, shared.NewError(shared.KindProviderNotConfigured,
			"provider %s is disabled for shop %s", providerCode, shopID)
	}
	return f.registry.Build(cfg)
}

// observe records one provider call's outcome and duration.
func (f *Facade) observe(providerCode, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	f.collector.RecordCall(providerCode, operation, status, f.clock.Now().Sub(start).Seconds())
}

// shopFor resolves the shop owning a shipment's sub-order.
func (f *Facade) shopFor(ctx context.Context, subOrderID string) (string, error) {
	o, err := f.orders.FindBySubOrderID(ctx, subOrderID)
	if err != nil {
		return "", err
	}
	so := o.SubOrder(subOrderID)
	if so == nil {
		return "", shared.ErrNotFound("sub-order", subOrderID)
	}
	return so.ShopID, nil
}

// lockTracking serializes webhook processing per tracking number.
func (f *Facade) lockTracking(trackingNumber string) func() {
	return f.webhookLocks.Lock(trackingNumber)
}
