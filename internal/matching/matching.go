// Package matching ranks stored candidates against the skills a job requires.
package matching

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	descriptionPlaceholder = "{{JOB_DESCRIPTION}}"
	defaultMaxLogLength    = 200
)

var (
	ErrEmptyDescription = errors.New("job description is empty")
	ErrNoSkillsFound    = errors.New("no skill list in reply")
)

// listPattern matches the first bracketed list of the reply.
var listPattern = regexp.MustCompile(`(?s)\[(.*?)\]`)

// Completer sends a prompt to the text generation service with retries.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, int, error)
}

type Matcher struct {
	completer Completer
	logger    *zap.Logger
	maxLogLen int
}

func NewMatcher(completer Completer, logger *zap.Logger, maxLogLength int) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Matcher{completer: completer, logger: logger, maxLogLen: maxLogLength}
}

// ExtractSkills asks the service for the skills a job description requires.
func (m *Matcher) ExtractSkills(ctx context.Context, description string) ([]string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	prompt := strings.ReplaceAll(promptTemplate, descriptionPlaceholder, description)
	m.logger.Debug("skills extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, attempts, err := m.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract skills: %w", err)
	}

	m.logger.Debug("skills extraction response",
		zap.Int("attempts", attempts),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	skills, err := ParseSkillList(raw)
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// ParseSkillList reads the first bracketed list of a reply. JSON is tried first,
// with single quotes accepted; otherwise the list body is split on commas.
func ParseSkillList(raw string) ([]string, error) {
	match := listPattern.FindString(raw)
	if match == "" {
		return nil, ErrNoSkillsFound
	}

	var items []any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(match, "'", `"`)), &items); err == nil {
		skills := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				skills = append(skills, s)
			}
		}
		return skills, nil
	}

	body := strings.TrimSuffix(strings.TrimPrefix(match, "["), "]")
	skills := []string{}
	for _, part := range strings.Split(body, ",") {
		if s := strings.Trim(strings.TrimSpace(part), `"'`); s != "" {
			skills = append(skills, s)
		}
	}
	return skills, nil
}

// ParseSkills turns comma separated input into folded, de-duplicated skills.
func ParseSkills(text string) []string {
	skills := []string{}
	for _, term := range utils.SplitTerms(text) {
		if folded := utils.Fold(term); !slices.Contains(skills, folded) {
			skills = append(skills, folded)
		}
	}
	return skills
}

// Match is a candidate with the share of required skills it has.
type Match struct {
	Candidate candidate.Record
	Score     float64
	Overlap   []string
}

// Rank scores every candidate by |required ∩ skills| / |required| using exact
// case-insensitive skill names. Candidates without overlap are left out; the rest
// are ordered by score, ties keeping pool order.
func Rank(required []string, pool []candidate.Record) []Match {
	required = ParseSkills(strings.Join(required, ","))
	matches := []Match{}
	if len(required) == 0 {
		return matches
	}

	for _, rec := range pool {
		skills := make(map[string]struct{}, len(rec.Skills))
		for _, skill := range rec.Skills {
			skills[utils.Fold(skill)] = struct{}{}
		}

		var overlap []string
		for _, want := range required {
			if _, ok := skills[want]; ok {
				overlap = append(overlap, want)
			}
		}
		if len(overlap) == 0 {
			continue
		}

		matches = append(matches, Match{
			Candidate: rec,
			Score:     float64(len(overlap)) / float64(len(required)),
			Overlap:   overlap,
		})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	return matches
}
