// Package candidate defines the canonical candidate record and the pure functions
// that build, score and export it.
package candidate

import (
	"slices"
	"strings"
	"time"
)

type Seniority string

const (
	SeniorityJunior    Seniority = "Junior"
	SeniorityMid       Seniority = "Mid-level"
	SenioritySenior    Seniority = "Senior"
	SeniorityLead      Seniority = "Lead"
	SeniorityManager   Seniority = "Manager"
	SeniorityExecutive Seniority = "Executive"
	SeniorityUnknown   Seniority = "Unknown"
)

// Seniorities lists the known levels from junior to executive, Unknown last.
var Seniorities = []Seniority{
	SeniorityJunior,
	SeniorityMid,
	SenioritySenior,
	SeniorityLead,
	SeniorityManager,
	SeniorityExecutive,
	SeniorityUnknown,
}

var seniorityAliases = map[string]Seniority{
	"junior":       SeniorityJunior,
	"entry":        SeniorityJunior,
	"entry-level":  SeniorityJunior,
	"entry level":  SeniorityJunior,
	"mid-level":    SeniorityMid,
	"mid level":    SeniorityMid,
	"mid":          SeniorityMid,
	"middle":       SeniorityMid,
	"intermediate": SeniorityMid,
	"senior":       SenioritySenior,
	"lead":         SeniorityLead,
	"principal":    SeniorityLead,
	"staff":        SeniorityLead,
	"manager":      SeniorityManager,
	"executive":    SeniorityExecutive,
	"director":     SeniorityExecutive,
	"vp":           SeniorityExecutive,
	"c-level":      SeniorityExecutive,
}

// ParseSeniority maps free text to a known level. Unrecognised text is Unknown.
func ParseSeniority(s string) Seniority {
	if level, ok := seniorityAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return level
	}
	return SeniorityUnknown
}

// Record is one parsed resume.
type Record struct {
	ID                          string    `json:"id"`
	SourceFileName              string    `json:"sourceFileName"`
	FullName                    string    `json:"fullName"`
	Email                       string    `json:"email"`
	Phone                       string    `json:"phone"`
	Location                    string    `json:"location"`
	LinkedInURL                 string    `json:"linkedInUrl"`
	GithubURL                   string    `json:"githubUrl"`
	Skills                      []string  `json:"skills"`
	Education                   string    `json:"education"`
	WorkExperience              string    `json:"workExperience"`
	Certifications              string    `json:"certifications"`
	SeniorityLevel              Seniority `json:"seniorityLevel"`
	YearsOfExperience           float64   `json:"yearsOfExperience"`
	PrimaryIndustry             string    `json:"primaryIndustry"`
	PrimaryProgrammingLanguages []string  `json:"primaryProgrammingLanguages"`
	ProcessedAt                 time.Time `json:"processedAt"`
	Score                       int       `json:"score"`
}

// Clone returns a copy that shares no slices with r.
func (r Record) Clone() Record {
	r.Skills = cloneStrings(r.Skills)
	r.PrimaryProgrammingLanguages = cloneStrings(r.PrimaryProgrammingLanguages)
	return r
}

// Rescore recomputes Score from the record's fields.
func (r *Record) Rescore() {
	r.Score = Score(*r)
}

// Sanitize restores the record invariants after a manual change: years become a
// finite non-negative number and list entries are trimmed with blank ones dropped.
func (r *Record) Sanitize() {
	r.YearsOfExperience = ParseYears(r.YearsOfExperience)
	r.Skills = compactStrings(r.Skills)
	r.PrimaryProgrammingLanguages = compactStrings(r.PrimaryProgrammingLanguages)
}

func compactStrings(s []string) []string {
	result := make([]string, 0, len(s))
	for _, item := range s {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
