// Package cleanup implements the periodic purge loop described in spec
// §4.8: expired and pending rows are deleted unconditionally every tick;
// detected rows are purged in two passes, the second computed in-process
// because JSON-numeric comparison in the store is unreliable.
package cleanup

import (
	"context"
	"time"

	"github.com/google/uuid"

	mcommon "github.com/shadowline/mevwatch/common"
	"github.com/shadowline/mevwatch/metrics"
	"github.com/shadowline/mevwatch/store"
	"github.com/shadowline/mevwatch/swaptypes"
)

var log = mcommon.NewLogger("cleanup")

// Loop runs the three-pass deletion once at startup and every interval
// thereafter (spec §4.8).
type Loop struct {
	opps     *store.OpportunityRepo
	interval time.Duration
}

func New(opps *store.OpportunityRepo, interval time.Duration) *Loop {
	return &Loop{opps: opps, interval: interval}
}

// Run blocks until ctx is cancelled, running one pass immediately and then
// on every tick of interval.
func (l *Loop) Run(ctx context.Context) error {
	l.runOnce(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.runOnce(ctx)
		}
	}
}

func (l *Loop) runOnce(ctx context.Context) {
	runID := uuid.NewString()
	total := int64(0)

	expired, err := l.opps.DeleteByStatus(ctx, swaptypes.StatusExpired)
	if err != nil {
		log.Warn("cleanup: delete expired failed", "run", runID, "err", err)
	}
	total += expired
	metrics.CleanupDeletions.WithLabelValues("expired").Add(float64(expired))

	pending, err := l.opps.DeleteByStatus(ctx, swaptypes.StatusPending)
	if err != nil {
		log.Warn("cleanup: delete pending failed", "run", runID, "err", err)
	}
	total += pending
	metrics.CleanupDeletions.WithLabelValues("pending").Add(float64(pending))

	markedExpired, err := l.opps.DeleteExpiredDetected(ctx)
	if err != nil {
		log.Warn("cleanup: delete expired-detected failed", "run", runID, "err", err)
	}
	total += markedExpired
	metrics.CleanupDeletions.WithLabelValues("detected_marked_expired").Add(float64(markedExpired))

	deadlinePassed, err := l.sweepDeadlinePassed(ctx)
	if err != nil {
		log.Warn("cleanup: deadline sweep failed", "run", runID, "err", err)
	}
	total += deadlinePassed
	metrics.CleanupDeletions.WithLabelValues("detected_deadline_passed").Add(float64(deadlinePassed))

	log.Info("cleanup pass complete", "run", runID, "deleted", total,
		"expired", expired, "pending", pending, "markedExpired", markedExpired, "deadlinePassed", deadlinePassed)
}

// sweepDeadlinePassed fetches the remaining detected rows and deletes those
// whose metadata.deadlineTimestamp has passed, computed in Go rather than
// in a JSON query (spec §4.8).
func (l *Loop) sweepDeadlinePassed(ctx context.Context) (int64, error) {
	rows, err := l.opps.RemainingDetected(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	var ids []int64
	for _, row := range rows {
		if row.Metadata.DeadlineTimestamp < now {
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return l.opps.DeleteByIDs(ctx, ids)
}
