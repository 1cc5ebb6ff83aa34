package shippingfacade

import (
	"context"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shipping"
)

// GetTracking answers a tracking query through a short read-through cache.
// A live answer in a non-terminal state is cached; terminal answers are
// returned without re-caching so the row stays the source of truth once
// nothing can change. When the provider is down the last persisted
// snapshot is served marked Stale with the failure attached.
func (f *Facade) GetTracking(ctx context.Context, trackingNumber string) (*shipping.TrackingInfo, error) {
	if cached, ok, err := f.cache.GetTracking(ctx, trackingNumber); err == nil && ok {
		return cached, nil
	} else if err != nil {
		f.logger.Warn("tracking cache read failed",
			zap.String("tracking_number", trackingNumber), zap.Error(err))
	}

	s, err := f.shipments.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	shopID, err := f.shopFor(ctx, s.SubOrderID)
	if err != nil {
		return nil, err
	}
	p, err := f.buildProvider(ctx, shopID, s.ProviderCode)
	if err != nil {
		return nil, err
	}

	start := f.clock.Now()
	info, err := p.GetTracking(ctx, trackingNumber)
	f.observe(s.ProviderCode, "get_tracking", start, err)
	if err != nil {
		f.collector.RecordStaleServed(s.ProviderCode)
		f.logger.Warn("serving stale tracking snapshot",
			zap.String("tracking_number", trackingNumber),
			zap.String("provider", s.ProviderCode),
			zap.Error(err))
		return staleSnapshot(s, err), nil
	}

	if !info.Status.IsTerminal() {
		if err := f.cache.SetTracking(ctx, trackingNumber, info, f.cfg.TrackingCacheTTL); err != nil {
			f.logger.Warn("tracking cache write failed",
				zap.String("tracking_number", trackingNumber), zap.Error(err))
		}
	}
	return info, nil
}

// staleSnapshot builds a degraded answer from the persisted shipment row.
func staleSnapshot(s *shipping.Shipment, cause error) *shipping.TrackingInfo {
	info := &shipping.TrackingInfo{
		TrackingNumber: s.TrackingNumber,
		Status:         s.Status,
		Description:    s.Status.Display(),
		UpdatedAt:      s.UpdatedAt,
		Stale:          true,
		Err:            cause.Error(),
	}
	if n := len(s.History); n > 0 {
		last := s.History[n-1]
		info.ProviderStatus = last.ProviderStatus
		if last.Message != "" {
			info.Description = last.Message
		}
	}
	return info
}
