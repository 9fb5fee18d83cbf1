// workers/request_expiry_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/metrics"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"gorm.io/gorm"
)

// RequestExpiryWorker cancels pending team requests nobody acted on. Old
// invites otherwise pin the sender against the 5-pending cap forever.
type RequestExpiryWorker struct {
	db       *gorm.DB
	interval time.Duration
	maxAge   time.Duration
}

// NewRequestExpiryWorker sweeps hourly; maxAge <= 0 disables the worker.
func NewRequestExpiryWorker(db *gorm.DB, maxAge time.Duration) *RequestExpiryWorker {
	return &RequestExpiryWorker{
		db:       db,
		interval: 1 * time.Hour,
		maxAge:   maxAge,
	}
}

func (w *RequestExpiryWorker) Start(ctx context.Context) {
	if w.maxAge <= 0 {
		log.Println("⏸️ Request expiry worker disabled (REQUEST_EXPIRY_DAYS=0)")
		return
	}
	log.Printf("🔁 Starting request expiry worker (max age %s)…", w.maxAge)
	go w.run(ctx)
}

func (w *RequestExpiryWorker) run(ctx context.Context) {
	// Initial sweep so a restart does not wait an hour to catch up.
	w.expireBatch()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.expireBatch()
		case <-ctx.Done():
			log.Println("⏹️ Request expiry worker stopped")
			return
		}
	}
}

// expireBatch cancels pending requests created before the cutoff. Only
// pending rows are touched; accepted and cancelled requests keep their
// history.
func (w *RequestExpiryWorker) expireBatch() {
	cutoff := time.Now().Add(-w.maxAge)

	result := w.db.Model(&models.TeamRequest{}).
		Where("status = ? AND created_at < ?", models.RequestStatusPending, cutoff).
		Update("status", models.RequestStatusCancelled)
	if result.Error != nil {
		log.Printf("❌ Request expiry sweep failed: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("🧹 Expired %d stale team request(s)", result.RowsAffected)
		metrics.RecordRequestsCancelled("expired", int(result.RowsAffected))
	}
}
