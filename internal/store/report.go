package store

import (
	"cmp"
	"slices"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/utils"
)

const topSkillsLimit = 10

// SkillCount is how many candidates list a skill.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Report summarises the stored pool.
type Report struct {
	Candidates   int                         `json:"candidates"`
	BySeniority  map[candidate.Seniority]int `json:"bySeniority"`
	AverageScore float64                     `json:"averageScore"`
	AverageYears float64                     `json:"averageYears"`
	TopSkills    []SkillCount                `json:"topSkills"`
}

// Report builds summary statistics over the current records. Skills are counted once
// per candidate and compared case-insensitively; the first spelling seen is reported.
func (s *Store) Report() Report {
	records := s.All()

	report := Report{
		Candidates:  len(records),
		BySeniority: make(map[candidate.Seniority]int),
		TopSkills:   []SkillCount{},
	}
	if len(records) == 0 {
		return report
	}

	var (
		totalScore int
		totalYears float64
		counts     = make(map[string]*SkillCount)
		order      []string
	)
	for _, rec := range records {
		report.BySeniority[rec.SeniorityLevel]++
		totalScore += rec.Score
		totalYears += rec.YearsOfExperience

		seen := make(map[string]bool)
		for _, skill := range rec.Skills {
			key := utils.Fold(skill)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if counts[key] == nil {
				counts[key] = &SkillCount{Skill: skill}
				order = append(order, key)
			}
			counts[key].Count++
		}
	}

	report.AverageScore = float64(totalScore) / float64(len(records))
	report.AverageYears = totalYears / float64(len(records))

	for _, key := range order {
		report.TopSkills = append(report.TopSkills, *counts[key])
	}
	slices.SortStableFunc(report.TopSkills, func(a, b SkillCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(report.TopSkills) > topSkillsLimit {
		report.TopSkills = report.TopSkills[:topSkillsLimit]
	}

	return report
}
