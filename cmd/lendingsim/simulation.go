package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/app/lendingservice"
	"github.com/MrMariodude/LibraCore/lending"
)

const (
	operationTimeout = 2 * time.Second
	reportInterval   = 5 * time.Second
)

// ErrInventoryDrift is returned by Verify when an item's available copies do not match its open loans.
var ErrInventoryDrift = errors.New("inventory drift detected")

var genres = []string{"fiction", "history", "science", "software", "poetry"}

// Stats counts the requests the simulation handled.
type Stats struct {
	Requests     int64
	Succeeded    int64
	Rejected     int64
	Failed       int64
	Skipped      int64
	Backpressure int64
}

// Simulation drives the lending service from a bounded worker pool.
type Simulation struct {
	service  *lendingservice.Service
	clock    *lending.ManualClock
	config   Config
	state    *SimulationState
	selector *ScenarioSelector
	logger   *slog.Logger
	runID    string

	requestQueue chan Scenario
	wg           sync.WaitGroup

	mu        sync.Mutex
	stats     Stats
	startTime time.Time
}

// NewSimulation creates a Simulation. The service must have been built with clock.
func NewSimulation(
	service *lendingservice.Service,
	clock *lending.ManualClock,
	config Config,
	logger *slog.Logger,
) *Simulation {

	state := NewSimulationState()

	return &Simulation{
		service:      service,
		clock:        clock,
		config:       config,
		state:        state,
		selector:     NewScenarioSelector(state, config.Borrowers, time.Now().UnixNano()),
		logger:       logger,
		runID:        uuid.NewString()[:8],
		requestQueue: make(chan Scenario, config.Workers*2),
	}
}

// Setup stocks the catalog with config.Items items of config.CopiesPerItem copies each.
// Titles carry a run ID so repeated runs against the same database do not collide.
func (s *Simulation) Setup(ctx context.Context) error {
	for i := 0; i < s.config.Items; i++ {
		item, err := s.service.AddItem(
			ctx,
			fmt.Sprintf("Simulated Title %s-%04d", s.runID, i),
			fmt.Sprintf("Author %03d", i%97),
			genres[i%len(genres)],
			s.clock.Now().AddDate(-(i % 40), 0, 0),
			s.config.CopiesPerItem,
		)
		if err != nil {
			return fmt.Errorf("stocking item %d: %w", i, err)
		}

		s.state.AddItem(item.ID)
	}

	s.logger.Info("catalog stocked", "items", s.config.Items, "copies_per_item", s.config.CopiesPerItem)

	return nil
}

// Run generates requests at config.Rate until ctx is done or config.Duration has passed.
// In-flight requests are finished before Run returns.
func (s *Simulation) Run(ctx context.Context) {
	runCtx := ctx
	if s.config.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Duration)
		defer cancel()
	}

	s.mu.Lock()
	s.startTime = time.Now()
	s.mu.Unlock()

	// above 50 req/s a single ticker interval gets too short, so requests are sent in batches
	batchSize := 1
	batchInterval := time.Second / time.Duration(s.config.Rate)
	if s.config.Rate >= 50 {
		batchSize = s.config.Rate / 10
		batchInterval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(batchInterval)
	defer ticker.Stop()

	s.logger.Info("simulation started",
		"rate", s.config.Rate,
		"batch_size", batchSize,
		"batch_interval", batchInterval.String(),
		"workers", s.config.Workers,
	)

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	reporterDone := make(chan struct{})
	go s.reportStats(runCtx, reporterDone)

	for {
		select {
		case <-runCtx.Done():
			close(s.requestQueue)
			s.wg.Wait()
			<-reporterDone
			s.logStats("simulation finished")

			return

		case <-ticker.C:
			for i := 0; i < batchSize; i++ {
				select {
				case s.requestQueue <- s.selector.SelectScenario():
				default:
					s.count(func(stats *Stats) { stats.Backpressure++ })
				}
			}
		}
	}
}

func (s *Simulation) worker(ctx context.Context) {
	defer s.wg.Done()

	for scenario := range s.requestQueue {
		// outcomes must be recorded even when the run is stopping
		opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), operationTimeout)
		executed, err := s.execute(opCtx, scenario)
		cancel()

		s.record(scenario, executed, err)
	}
}

// execute runs one scenario. It returns false when the scenario was skipped.
func (s *Simulation) execute(ctx context.Context, scenario Scenario) (bool, error) {
	switch scenario.Type {
	case ScenarioCheckout:
		dueAt := s.clock.Now().Add(s.config.LoanPeriod)

		loanID, err := s.service.Checkout(ctx, scenario.ItemID, scenario.BorrowerID, dueAt)
		if err == nil {
			s.state.CheckedOut(loanID, scenario.ItemID, scenario.BorrowerID)
		}

		return true, err

	case ScenarioReturn:
		if !s.state.Reserve(scenario.LoanID, false) {
			return false, nil
		}
		defer s.state.Release(scenario.LoanID)

		result, err := s.service.Return(ctx, scenario.LoanID)
		if err == nil {
			s.state.Returned(scenario.LoanID, result.State == lending.LoanStatePendingPayment)
		}

		return true, err

	case ScenarioPayment:
		if !s.state.Reserve(scenario.LoanID, true) {
			return false, nil
		}
		defer s.state.Release(scenario.LoanID)

		_, err := s.service.ProcessPayment(ctx, scenario.LoanID)
		if err == nil {
			s.state.Paid(scenario.LoanID)
		}

		return true, err

	case ScenarioQueryLoans:
		_, err := s.service.ListLoansForBorrower(ctx, scenario.BorrowerID)

		return true, err

	case ScenarioAdvanceClock:
		// the step is jittered by up to an hour
		step := s.config.ClockStep + time.Duration(rand.Int63n(int64(time.Hour))) //nolint:gosec // simulation code
		s.clock.Advance(step)

		return true, nil

	default:
		return true, fmt.Errorf("unknown scenario type: %s", scenario.Type)
	}
}

func (s *Simulation) record(scenario Scenario, executed bool, err error) {
	s.count(func(stats *Stats) {
		switch {
		case !executed:
			stats.Skipped++
		case err == nil:
			stats.Requests++
			stats.Succeeded++
		case lending.IsRejection(err):
			stats.Requests++
			stats.Rejected++
		default:
			stats.Requests++
			stats.Failed++
		}
	})

	if executed && err != nil && !lending.IsRejection(err) {
		s.logger.Warn("simulated request failed", "scenario", string(scenario.Type), "error", err.Error())
	}
}

func (s *Simulation) count(update func(stats *Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update(&s.stats)
}

// Stats returns a copy of the request counters.
func (s *Simulation) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}

// Verify checks every stocked item: available copies must equal total copies minus open loans.
func (s *Simulation) Verify(ctx context.Context) error {
	items, _, _ := s.state.Snapshot()

	var drifts []error

	for _, itemID := range items {
		item, err := s.service.GetItem(ctx, itemID)
		if err != nil {
			return err
		}

		expected := item.TotalCopies - s.state.Outstanding(itemID)
		if item.AvailableCopies != expected {
			drifts = append(drifts, fmt.Errorf("item %s: %d available, expected %d", itemID, item.AvailableCopies, expected))
		}
	}

	if len(drifts) > 0 {
		return errors.Join(append([]error{ErrInventoryDrift}, drifts...)...)
	}

	return nil
}

func (s *Simulation) reportStats(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logStats("simulation progress")
		}
	}
}

func (s *Simulation) logStats(msg string) {
	s.mu.Lock()
	stats := s.stats
	elapsed := time.Since(s.startTime)
	s.mu.Unlock()

	items, active, pending, completed, late := s.state.Stats()

	s.logger.Info(msg,
		"elapsed", elapsed.Truncate(time.Millisecond).String(),
		"requests", stats.Requests,
		"req_per_sec", fmt.Sprintf("%.1f", float64(stats.Requests)/elapsed.Seconds()),
		"succeeded", stats.Succeeded,
		"rejected", stats.Rejected,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"backpressure", stats.Backpressure,
		"items", items,
		"active_loans", active,
		"pending_payment", pending,
		"completed_loans", completed,
		"late_returns", late,
		"simulated_now", s.clock.Now().Format(time.RFC3339),
		"goroutines", runtime.NumGoroutine(),
	)
}
