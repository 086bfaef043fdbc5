package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/janus/internal/logger"
)

// Job names
const (
	JobAlertSweep      = "alert_sweep"
	JobZoneRefresh     = "zone_refresh"
	JobBaselineRebuild = "baseline_rebuild"
)

// AlertSweeper evicts expired quarter alerts
type AlertSweeper interface {
	Sweep(now time.Time) int
}

// ZoneRefresher reloads the shot-zone tables
type ZoneRefresher interface {
	RefreshZoneTables(ctx context.Context) error
}

// BaselineRebuilder recomputes historical half baselines
type BaselineRebuilder interface {
	RebuildHalfBaselines(ctx context.Context) (int64, error)
}

// AlertSweepJob evicts expired alerts on schedule
func AlertSweepJob(schedule string, alerts AlertSweeper, log logrus.FieldLogger) Job {
	return Job{
		Name:     JobAlertSweep,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			if n := alerts.Sweep(time.Now()); n > 0 {
				logger.WithJob(log, JobAlertSweep).WithField("evicted", n).Debug("Swept expired alerts")
			}
			return nil
		},
	}
}

// ZoneRefreshJob reloads zone tables on schedule and once at start
func ZoneRefreshJob(schedule string, zones ZoneRefresher, log logrus.FieldLogger) Job {
	return Job{
		Name:       JobZoneRefresh,
		Schedule:   schedule,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			if err := zones.RefreshZoneTables(ctx); err != nil {
				return err
			}
			logger.WithJob(log, JobZoneRefresh).Info("Refreshed shot zone tables")
			return nil
		},
	}
}

// BaselineRebuildJob recomputes half baselines on schedule
func BaselineRebuildJob(schedule string, baselines BaselineRebuilder, log logrus.FieldLogger) Job {
	return Job{
		Name:     JobBaselineRebuild,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			n, err := baselines.RebuildHalfBaselines(ctx)
			if err != nil {
				return err
			}
			logger.WithJob(log, JobBaselineRebuild).WithField("rows", n).Info("Rebuilt half baselines")
			return nil
		},
	}
}
