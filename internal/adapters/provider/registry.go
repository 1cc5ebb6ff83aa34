package provider

import (
	"strings"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// Factory builds a provider instance bound to one shop's decrypted
// credentials.
type Factory func(creds shipping.Credentials) (shipping.Provider, error)

// Registry resolves provider codes to configured adapter instances.
// Codes are case-insensitive; construction decrypts the shop's credential
// blob through the vault.
type Registry struct {
	factories map[string]Factory
	vault     *Vault
	logger    *zap.Logger
}

// NewRegistry creates a registry pre-loaded with every supported carrier.
// The in-house fleet is registered alongside the external ones; it ignores
// credentials entirely.
func NewRegistry(cfg *config.ProvidersConfig, vault *Vault, inhouse *InHouse, clock shared.Clock, logger *zap.Logger) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		vault:     vault,
		logger:    logger,
	}

	retry := cfg.Retry
	sandbox := cfg.Sandbox
	r.Register(CodeGHTK, func(creds shipping.Credentials) (shipping.Provider, error) {
		return NewGHTK(creds, retry, sandbox, clock, logger), nil
	})
	r.Register(CodeGHN, func(creds shipping.Credentials) (shipping.Provider, error) {
		return NewGHN(creds, retry, sandbox, clock, logger), nil
	})
	r.Register(CodeViettelPost, func(creds shipping.Credentials) (shipping.Provider, error) {
		return NewViettelPost(creds, retry, sandbox, clock, logger), nil
	})
	r.Register(CodeInHouse, func(shipping.Credentials) (shipping.Provider, error) {
		return inhouse, nil
	})
	return r
}

// Register adds or replaces a factory under a code
func (r *Registry) Register(code string, f Factory) {
	r.factories[strings.ToLower(code)] = f
}

// Known reports whether a code resolves to a factory
func (r *Registry) Known(code string) bool {
	_, ok := r.factories[strings.ToLower(code)]
	return ok
}

// Codes lists the registered provider codes
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.factories))
	for c := range r.factories {
		codes = append(codes, c)
	}
	return codes
}

// Build instantiates the provider named by a shop's config, decrypting the
// credential blob first.
func (r *Registry) Build(cfg *shipping.ProviderConfig) (shipping.Provider, error) {
	factory, ok := r.factories[strings.ToLower(cfg.ProviderCode)]
	if !ok {
		return nil, shared.NewError(shared.KindInvalidProvider, "unknown provider code %q", cfg.ProviderCode)
	}

	var creds shipping.Credentials
	if len(cfg.EncryptedCredentials) > 0 {
		var err error
		creds, err = r.vault.Decrypt(cfg.EncryptedCredentials)
		if err != nil {
			return nil, shared.WrapError(shared.KindProviderInitFailed, err, "failed to decrypt credentials for %s", cfg.ProviderCode)
		}
	}

	p, err := factory(creds)
	if err != nil {
		return nil, shared.WrapError(shared.KindProviderInitFailed, err, "failed to initialize provider %s", cfg.ProviderCode)
	}
	return p, nil
}
