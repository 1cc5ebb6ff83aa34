package shippingfacade

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// ProviderConfigView is the credential-free projection returned to shop
// admin surfaces. Plaintext secrets never leave the facade.
type ProviderConfigView struct {
	ProviderCode string    `json:"provider_code"`
	IsEnabled    bool      `json:"is_enabled"`
	IsDefault    bool      `json:"is_default"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SaveProviderConfig encrypts the shop's carrier credentials and upserts
// the record. Marking a config default clears the flag on the shop's
// other providers.
func (f *Facade) SaveProviderConfig(ctx context.Context, shopID, providerCode string, creds shipping.Credentials, enabled, isDefault bool) error {
	providerCode = strings.ToLower(providerCode)
	if !f.registry.Known(providerCode) {
		return shared.NewError(shared.KindInvalidProvider, "unknown provider code %q", providerCode)
	}

	blob, err := f.vault.Encrypt(creds)
	if err != nil {
		return err
	}

	cfg := &shipping.ProviderConfig{
		ShopID:       shopID,
		ProviderCode: providerCode,
		IsEnabled:    enabled,
		IsDefault:    isDefault,
		UpdatedAt:    f.clock.Now(),
	}
	if err := f.configs.Upsert(ctx, cfg, blob); err != nil {
		return err
	}

	f.logger.Info("provider config saved",
		zap.String("shop_id", shopID),
		zap.String("provider", providerCode),
		zap.Bool("enabled", enabled),
		zap.Bool("default", isDefault))
	return nil
}

// TestProviderConnection builds the provider from stored credentials and
// runs its authenticated health check.
func (f *Facade) TestProviderConnection(ctx context.Context, shopID, providerCode string) error {
	p, err := f.buildProvider(ctx, shopID, providerCode)
	if err != nil {
		return err
	}
	start := f.clock.Now()
	err = p.TestConnection(ctx)
	f.observe(providerCode, "test_connection", start, err)
	return err
}

// ListProviderConfigs returns the shop's enabled providers without
// credentials, default first.
func (f *Facade) ListProviderConfigs(ctx context.Context, shopID string) ([]ProviderConfigView, error) {
	configs, err := f.configs.ListEnabled(ctx, shopID)
	if err != nil {
		return nil, err
	}
	views := make([]ProviderConfigView, 0, len(configs))
	for _, cfg := range configs {
		views = append(views, ProviderConfigView{
			ProviderCode: cfg.ProviderCode,
			IsEnabled:    cfg.IsEnabled,
			IsDefault:    cfg.IsDefault,
			UpdatedAt:    cfg.UpdatedAt,
		})
	}
	return views, nil
}
