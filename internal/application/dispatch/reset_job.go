package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/metrics"
	"github.com/vietcart/logistics/internal/domain/dispatch"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/infrastructure/config"
)

// ResetJob zeroes every region's daily leg counters once per region-local
// day. The job ticks frequently and relies on the per-(region, day) journal
// in the repository to make each reset fire exactly once, so a crash or a
// second instance cannot double-reset or skip a day.
type ResetJob struct {
	shippers  dispatch.ShipperRepository
	collector *metrics.DispatchMetricsCollector
	clock     shared.Clock
	zones     map[string]*time.Location
	interval  time.Duration
	logger    *zap.Logger
}

// NewResetJob resolves the configured IANA timezones up front so a bad
// config fails at startup rather than at midnight.
func NewResetJob(
	shippers dispatch.ShipperRepository,
	collector *metrics.DispatchMetricsCollector,
	cfg *config.DispatchConfig,
	clock shared.Clock,
	logger *zap.Logger,
) (*ResetJob, error) {
	zones := make(map[string]*time.Location, len(cfg.ResetTimezones))
	for region, tz := range cfg.ResetTimezones {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, shared.NewError(shared.KindValidation, "invalid reset timezone %q for region %s", tz, region)
		}
		zones[region] = loc
	}
	return &ResetJob{
		shippers:  shippers,
		collector: collector,
		clock:     clock,
		zones:     zones,
		interval:  time.Minute,
		logger:    logger,
	}, nil
}

// Run ticks until the context is cancelled.
func (j *ResetJob) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce attempts the reset for every region. The repository journal makes
// repeated calls within one region-local day no-ops.
func (j *ResetJob) RunOnce(ctx context.Context) {
	now := j.clock.Now()
	for region, loc := range j.zones {
		day := now.In(loc).Format("2006-01-02")
		rows, err := j.shippers.ResetDailyCounters(ctx, region, day)
		if err != nil {
			j.logger.Error("daily counter reset failed",
				zap.String("region", region),
				zap.String("day", day),
				zap.Error(err))
			continue
		}
		if rows > 0 {
			j.collector.RecordCounterReset(region, rows)
			j.logger.Info("daily shipper counters reset",
				zap.String("region", region),
				zap.String("day", day),
				zap.Int64("shippers", rows))
		}
	}
}
