package main

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// ScenarioType names one kind of simulated request.
type ScenarioType string

const (
	ScenarioCheckout     ScenarioType = "checkout"
	ScenarioReturn       ScenarioType = "return"
	ScenarioPayment      ScenarioType = "payment"
	ScenarioQueryLoans   ScenarioType = "query_loans"
	ScenarioAdvanceClock ScenarioType = "advance_clock"
)

const (
	weightCheckout     = 200
	weightReturn       = 160
	weightPayment      = 120
	weightQueryLoans   = 15
	weightAdvanceClock = 5
)

// Scenario is a single request for the worker pool.
type Scenario struct {
	Type       ScenarioType
	ItemID     uuid.UUID
	LoanID     uuid.UUID
	BorrowerID string
}

// ScenarioSelector picks the next scenario from the current SimulationState.
type ScenarioSelector struct {
	state     *SimulationState
	borrowers int
	rnd       *rand.Rand
}

// NewScenarioSelector creates a selector. It is not safe for concurrent use.
func NewScenarioSelector(state *SimulationState, borrowers int, seed int64) *ScenarioSelector {
	return &ScenarioSelector{
		state:     state,
		borrowers: borrowers,
		rnd:       rand.New(rand.NewSource(seed)), //nolint:gosec // simulation code, weak random is fine
	}
}

func (s *ScenarioSelector) SelectScenario() Scenario {
	items, active, pending := s.state.Snapshot()

	weights := map[ScenarioType]int{
		ScenarioAdvanceClock: weightAdvanceClock,
	}

	if len(items) > 0 {
		weights[ScenarioCheckout] = weightCheckout
	}

	if len(active) > 0 {
		weights[ScenarioReturn] = weightReturn
	}

	if len(pending) > 0 {
		weights[ScenarioPayment] = weightPayment
	}

	if len(active)+len(pending) > 0 {
		weights[ScenarioQueryLoans] = weightQueryLoans
	}

	switch s.selectWeighted(weights) {
	case ScenarioCheckout:
		return Scenario{
			Type:       ScenarioCheckout,
			ItemID:     items[s.rnd.Intn(len(items))],
			BorrowerID: s.randomBorrower(),
		}
	case ScenarioReturn:
		return Scenario{Type: ScenarioReturn, LoanID: active[s.rnd.Intn(len(active))]}
	case ScenarioPayment:
		return Scenario{Type: ScenarioPayment, LoanID: pending[s.rnd.Intn(len(pending))]}
	case ScenarioQueryLoans:
		open := make([]uuid.UUID, 0, len(active)+len(pending))
		open = append(append(open, active...), pending...)
		loanID := open[s.rnd.Intn(len(open))]
		borrowerID, _ := s.state.BorrowerOf(loanID)

		return Scenario{Type: ScenarioQueryLoans, BorrowerID: borrowerID}
	default:
		return Scenario{Type: ScenarioAdvanceClock}
	}
}

// selectWeighted walks the scenario types in a fixed order so a seeded selector is reproducible.
func (s *ScenarioSelector) selectWeighted(weights map[ScenarioType]int) ScenarioType {
	order := []ScenarioType{
		ScenarioCheckout,
		ScenarioReturn,
		ScenarioPayment,
		ScenarioQueryLoans,
		ScenarioAdvanceClock,
	}

	total := 0
	for _, weight := range weights {
		total += weight
	}

	r := s.rnd.Intn(total)

	for _, scenarioType := range order {
		r -= weights[scenarioType]
		if r < 0 {
			return scenarioType
		}
	}

	return ScenarioAdvanceClock
}

func (s *ScenarioSelector) randomBorrower() string {
	return fmt.Sprintf("borrower-%04d", s.rnd.Intn(s.borrowers))
}
