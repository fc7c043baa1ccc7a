// Package sweep runs a periodic pending-hold expiry sweep: a background
// task that complements the opportunistic sweep Service.Create already
// runs inline, catching pending holds nobody happens to create a new
// reservation near.
package sweep

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seatflow/reservation-engine/internal/reservation"
)

// Scheduler wraps a cron.Cron that periodically calls
// reservation.Service.ExpirePending.
type Scheduler struct {
	cron    *cron.Cron
	service reservation.Service
	every   time.Duration
}

// New creates a scheduler that runs the sweep at the given interval.
func New(service reservation.Service, every time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		every:   every,
	}
}

// Start registers the sweep task and starts the cron runner.
func (s *Scheduler) Start() {
	spec := "@every " + s.every.String()
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		log.Fatalf("sweep: failed to schedule expiry sweep: %v", err)
	}
	log.Printf("sweep: expiring pending holds every %s", s.every)
	s.cron.Start()
}

// Stop stops the cron runner, waiting for any in-flight sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.service.ExpirePending(ctx)
	if err != nil {
		log.Printf("sweep: expire-pending failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("sweep: expired %d pending hold(s)", n)
	}
}
