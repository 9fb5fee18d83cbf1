// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartLifecycleScheduler deactivates hackathons whose end date has passed,
// every 10 minutes, so the active filter and the matching page stop offering
// finished events.
func (s *HackathonService) StartLifecycleScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			count, err := s.DeactivateEnded()
			if err != nil {
				log.Printf("[Scheduler] DB error deactivating hackathons: %v", err)
				return
			}
			if count > 0 {
				log.Printf("✅ Deactivated %d ended hackathon(s)", count)
			}
		}),
	)
}
