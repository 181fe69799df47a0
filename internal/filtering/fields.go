package filtering

import (
	"strings"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/utils"
)

const noCriterionReason = "no criterion given"

// termFilter keeps candidates whose field values contain every term as a
// case-insensitive substring. A term matches when any one value contains it.
type termFilter struct {
	name      string
	multiTerm bool
	criterion func(c *Criteria) string
	values    func(r candidate.Record) []string

	terms    []string
	disabled bool
	reason   string
}

// NewName matches the full name against the whole query.
func NewName() Filter {
	return &termFilter{
		name:      "name",
		criterion: func(c *Criteria) string { return c.Name },
		values:    func(r candidate.Record) []string { return []string{r.FullName} },
	}
}

// NewSkills requires every requested skill to be contained in one of the candidate's skills.
// Matching is by substring, so "java" also matches "JavaScript".
func NewSkills() Filter {
	return &termFilter{
		name:      "skills",
		multiTerm: true,
		criterion: func(c *Criteria) string { return c.Skills },
		values:    func(r candidate.Record) []string { return r.Skills },
	}
}

func NewLocation() Filter {
	return &termFilter{
		name:      "location",
		multiTerm: true,
		criterion: func(c *Criteria) string { return c.Location },
		values:    func(r candidate.Record) []string { return []string{r.Location} },
	}
}

func NewSeniority() Filter {
	return &termFilter{
		name:      "seniority",
		multiTerm: true,
		criterion: func(c *Criteria) string { return c.Seniority },
		values:    func(r candidate.Record) []string { return []string{string(r.SeniorityLevel)} },
	}
}

func (f *termFilter) Name() string { return f.name }

func (f *termFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *termFilter) IsEnabled() bool { return !f.disabled }

func (f *termFilter) Validate(c *Criteria) error {
	f.terms = nil
	f.disabled = false
	f.reason = ""

	query := f.criterion(c)
	if f.multiTerm {
		f.terms = utils.SplitTerms(query)
	} else if term := strings.TrimSpace(query); term != "" {
		f.terms = []string{term}
	}

	if len(f.terms) == 0 {
		f.Disable(noCriterionReason)
	}
	return nil
}

func (f *termFilter) Apply(pool []candidate.Record) ([]candidate.Record, Step) {
	kept := make([]candidate.Record, 0, len(pool))
	for _, rec := range pool {
		if f.matches(rec) {
			kept = append(kept, rec)
		}
	}
	return kept, Step{Initial: len(pool), Dropped: len(pool) - len(kept), Left: len(kept)}
}

func (f *termFilter) matches(rec candidate.Record) bool {
	values := f.values(rec)
	for _, term := range f.terms {
		found := false
		for _, value := range values {
			if utils.ContainsFold(value, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *termFilter) Status() Status {
	details := map[string]string{}
	if len(f.terms) > 0 {
		details["terms"] = strings.Join(f.terms, ",")
	}
	return Status{Name: f.name, Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
