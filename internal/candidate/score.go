package candidate

import "strings"

const (
	maxSkillPoints         = 30
	maxCertificationPoints = 10
	linkPoints             = 5
)

// Breakdown is the per-component result of Score.
type Breakdown struct {
	Skills         int
	Education      int
	Experience     int
	Certifications int
	Links          int
}

func (b Breakdown) Total() int {
	return b.Skills + b.Education + b.Experience + b.Certifications + b.Links
}

// Score returns the 0-100 fitness score of the record.
func Score(r Record) int {
	return ScoreBreakdown(r).Total()
}

func ScoreBreakdown(r Record) Breakdown {
	b := Breakdown{
		Skills:         min(len(r.Skills)*2, maxSkillPoints),
		Education:      educationPoints(r.Education),
		Experience:     experiencePoints(r.YearsOfExperience),
		Certifications: min(CountCertifications(r.Certifications)*2, maxCertificationPoints),
	}
	if strings.TrimSpace(r.LinkedInURL) != "" {
		b.Links += linkPoints
	}
	if strings.TrimSpace(r.GithubURL) != "" {
		b.Links += linkPoints
	}
	return b
}

// educationPoints matches plain substrings, so "bs" also hits words like "jobs".
func educationPoints(education string) int {
	lower := strings.ToLower(education)
	switch {
	case strings.Contains(lower, "phd"), strings.Contains(lower, "doctorate"):
		return 20
	case strings.Contains(lower, "master"):
		return 15
	case strings.Contains(lower, "bachelor"), strings.Contains(lower, "bs"), strings.Contains(lower, "ba"):
		return 10
	case strings.TrimSpace(lower) != "":
		return 5
	}
	return 0
}

func experiencePoints(years float64) int {
	switch {
	case years >= 10:
		return 30
	case years >= 7:
		return 25
	case years >= 5:
		return 20
	case years >= 3:
		return 15
	case years >= 1:
		return 10
	}
	return 0
}

// CountCertifications counts comma separated entries; blank text has none.
func CountCertifications(certifications string) int {
	if strings.TrimSpace(certifications) == "" {
		return 0
	}
	return strings.Count(certifications, ",") + 1
}
