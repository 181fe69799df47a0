// Package filtering narrows and orders candidate collections.
package filtering

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/candidate"
)

// Filter represents a single filtering step applied to candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	// Validate loads the filter's criterion. A filter without one disables itself.
	Validate(c *Criteria) error
	Apply(pool []candidate.Record) ([]candidate.Record, Step)
}

// Criteria holds the optional search terms. Skills, Location and Seniority accept
// comma separated terms that must all match.
type Criteria struct {
	Name      string
	Skills    string
	Location  string
	Seniority string
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Steps returns the standard filter chain.
func Steps() []Filter {
	return []Filter{
		NewName(),
		NewSkills(),
		NewLocation(),
		NewSeniority(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every step against the criteria and applies the enabled ones in order.
// The input pool is never modified.
func Run(logger *zap.Logger, criteria *Criteria, steps []Filter, pool []candidate.Record) ([]candidate.Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if criteria == nil {
		criteria = &Criteria{}
	}

	for _, step := range steps {
		if err := step.Validate(criteria); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	result := make([]candidate.Record, len(pool))
	copy(result, pool)

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}

		next, info := step.Apply(result)
		logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
		result = next
	}

	return result, nil
}

// Search applies the standard chain with the given criteria.
func Search(pool []candidate.Record, criteria Criteria) []candidate.Record {
	// The standard filters never fail validation.
	result, _ := Run(nil, &criteria, Steps(), pool)
	return result
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
