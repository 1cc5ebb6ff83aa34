package shippingfacade

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/provider"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/domain/shipping"
)

// FeeOptions is the aggregated answer to a fee query: every quote that
// arrived inside the budget, cheapest first, plus the per-provider
// failures so the caller can render partial results honestly.
type FeeOptions struct {
	Quotes   []shipping.FeeQuote
	Failures []shipping.FeeFailure
}

type quoteResult struct {
	code    string
	quote   *shipping.FeeQuote
	failure *shipping.FeeFailure
}

// QuoteFees fans out to every provider enabled for the shop in parallel
// under one shared time budget. Identical route+weight queries are served
// from cache per provider. When every enabled provider fails the in-house
// table quote is returned marked Fallback so checkout never dead-ends.
func (f *Facade) QuoteFees(ctx context.Context, req shipping.FeeRequest) (*FeeOptions, error) {
	configs, err := f.configs.ListEnabled(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.FeeBudget)
	defer cancel()

	results := make(chan quoteResult, len(configs))
	for _, cfg := range configs {
		go func(cfg *shipping.ProviderConfig) {
			results <- f.quoteOne(ctx, cfg, req)
		}(cfg)
	}

	options := &FeeOptions{}
	for range configs {
		r := <-results
		if r.quote != nil {
			options.Quotes = append(options.Quotes, *r.quote)
		}
		if r.failure != nil {
			options.Failures = append(options.Failures, *r.failure)
		}
	}

	if len(options.Quotes) == 0 {
		fallback, err := f.fallbackQuote(ctx, req)
		if err != nil {
			return nil, err
		}
		options.Quotes = append(options.Quotes, *fallback)
	}

	sort.Slice(options.Quotes, func(i, j int) bool {
		a, b := options.Quotes[i], options.Quotes[j]
		if !a.Fee.Equal(b.Fee) {
			return a.Fee.LessThan(b.Fee)
		}
		if a.EstimatedDays != b.EstimatedDays {
			return a.EstimatedDays < b.EstimatedDays
		}
		return a.ProviderCode < b.ProviderCode
	})
	return options, nil
}

func (f *Facade) quoteOne(ctx context.Context, cfg *shipping.ProviderConfig, req shipping.FeeRequest) quoteResult {
	code := cfg.ProviderCode
	key := shipping.FeeCacheKey(req.ShopID, code, req)

	if cached, ok, err := f.cache.GetFeeQuote(ctx, key); err == nil && ok {
		return quoteResult{code: code, quote: cached}
	} else if err != nil {
		f.logger.Warn("fee cache read failed", zap.String("provider", code), zap.Error(err))
	}

	p, err := f.registry.Build(cfg)
	if err != nil {
		return quoteResult{code: code, failure: &shipping.FeeFailure{ProviderCode: code, Reason: err.Error()}}
	}

	start := f.clock.Now()
	quote, err := p.CalculateFee(ctx, req)
	f.observe(code, "calculate_fee", start, err)
	if err != nil {
		f.logger.Warn("fee quote failed",
			zap.String("provider", code),
			zap.String("shop_id", req.ShopID),
			zap.Error(err))
		return quoteResult{code: code, failure: &shipping.FeeFailure{ProviderCode: code, Reason: shared.AsDomainError(err).Message}}
	}

	if err := f.cache.SetFeeQuote(ctx, key, quote, f.cfg.FeeCacheTTL); err != nil {
		f.logger.Warn("fee cache write failed", zap.String("provider", code), zap.Error(err))
	}
	return quoteResult{code: code, quote: quote}
}

// fallbackQuote prices the route off the in-house zone table, which never
// depends on an external call.
func (f *Facade) fallbackQuote(ctx context.Context, req shipping.FeeRequest) (*shipping.FeeQuote, error) {
	p, err := f.registry.Build(&shipping.ProviderConfig{ProviderCode: provider.CodeInHouse})
	if err != nil {
		return nil, err
	}
	quote, err := p.CalculateFee(ctx, req)
	if err != nil {
		return nil, err
	}
	quote.Fallback = true
	return quote, nil
}
