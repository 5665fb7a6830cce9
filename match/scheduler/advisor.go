// match/scheduler/advisor.go
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stricker-gg/go-services/match/service"
	"github.com/stricker-gg/go-services/shared/cluster"
	"github.com/stricker-gg/go-services/shared/models"
)

// Advisor periodically re-evaluates non-terminal matches and surfaces
// wall-clock eligibility flags (roster grace elapsed, start deadline passed).
// It never expires or transitions a match: resolution stays with referents
// and operators. With multiple instances the consistent hash ring decides
// which instance evaluates which match.
type Advisor struct {
	matchService *service.MatchService
	assignment   *cluster.ServiceAssignmentManager
	interval     time.Duration
	scheduler    gocron.Scheduler
}

// NewAdvisor creates a new Advisor instance.
func NewAdvisor(ms *service.MatchService, assignment *cluster.ServiceAssignmentManager, interval time.Duration) *Advisor {
	return &Advisor{
		matchService: ms,
		assignment:   assignment,
		interval:     interval,
	}
}

// Start schedules the advisory sweep.
func (a *Advisor) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create advisory scheduler: %w", err)
	}
	a.scheduler = sched

	_, err = sched.NewJob(
		gocron.DurationJob(a.interval),
		gocron.NewTask(a.sweep),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule advisory sweep: %w", err)
	}

	sched.Start()
	log.Printf("INFO: Advisory scheduler started, sweeping every %v.", a.interval)
	return nil
}

// Stop shuts the scheduler down.
func (a *Advisor) Stop() {
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			log.Printf("WARN: Advisory scheduler shutdown: %v", err)
		}
	}
}

// sweep walks the active matches owned by this instance.
func (a *Advisor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	matches, err := a.matchService.ListActiveMatches(ctx)
	if err != nil {
		log.Printf("ERROR: Advisory sweep failed to list active matches: %v", err)
		return
	}

	for _, m := range matches {
		responsible, err := a.assignment.IsResponsible(m.ID)
		if err != nil {
			log.Printf("WARN: Advisory sweep cannot determine ownership of match %s: %v", m.ID, err)
			continue
		}
		if !responsible {
			continue
		}
		a.evaluate(ctx, m)
	}
}

// evaluate surfaces deadline flags for one match.
func (a *Advisor) evaluate(ctx context.Context, m *models.Match) {
	if m.Status != models.StatusReady {
		return
	}
	readySince := m.CreatedAt
	if m.RosterSelection.CompletedAt != nil {
		readySince = *m.RosterSelection.CompletedAt
	}
	if time.Since(readySince) < a.matchService.StartDeadline() {
		return
	}
	if err := a.matchService.FlagStartDeadline(ctx, m.ID); err != nil {
		log.Printf("WARN: Failed to flag start deadline for match %s: %v", m.ID, err)
	}
}
