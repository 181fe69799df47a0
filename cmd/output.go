package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/matching"
	"github.com/spigell/resume-sieve/internal/paging"
	"github.com/spigell/resume-sieve/internal/pipeline"
	"github.com/spigell/resume-sieve/internal/similarity"
	"github.com/spigell/resume-sieve/internal/store"
	"github.com/spigell/resume-sieve/internal/utils"
)

const maxSkillsColumn = 40

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printResults(out io.Writer, results []pipeline.FileResult) {
	w := newTable(out)
	fmt.Fprintln(w, "FILE\tSTATUS\tDETAILS")
	for _, r := range results {
		details := r.CandidateID
		if r.Err != nil {
			details = fmt.Sprintf("%s: %v", r.Kind, r.Err)
		} else if len(r.Warnings) > 0 {
			details = fmt.Sprintf("%s (%d schema warnings)", r.CandidateID, len(r.Warnings))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.FileName, r.Status, details)
	}
	w.Flush()

	summary := pipeline.Summary(results)
	fmt.Fprintf(out, "\nadded: %d, replaced: %d, skipped: %d, failed: %d\n\n",
		summary[pipeline.StatusAdded], summary[pipeline.StatusReplaced],
		summary[pipeline.StatusSkipped], summary[pipeline.StatusFailed],
	)
}

func printPage(out io.Writer, page paging.Page[candidate.Record], v view) {
	fmt.Fprintf(out, "page %d/%d, %d candidates, sorted by %s", page.Index+1, page.TotalPages, page.Total, v.sortKey)
	if filters := describeCriteria(v); filters != "" {
		fmt.Fprintf(out, ", %s", filters)
	}
	fmt.Fprintln(out)

	if len(page.Items) == 0 {
		fmt.Fprintln(out, "no candidates")
		return
	}

	w := newTable(out)
	fmt.Fprintln(w, "#\tNAME\tSENIORITY\tYEARS\tSCORE\tLOCATION\tSKILLS")
	for i, rec := range page.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%d\t%s\t%s\n",
			page.Index*page.Size+i+1,
			rec.FullName,
			rec.SeniorityLevel,
			rec.YearsOfExperience,
			rec.Score,
			rec.Location,
			utils.TruncateForLog(strings.Join(rec.Skills, ", "), maxSkillsColumn),
		)
	}
	w.Flush()
}

func describeCriteria(v view) string {
	var parts []string
	for _, c := range []struct{ name, value string }{
		{"name", v.criteria.Name},
		{"skills", v.criteria.Skills},
		{"location", v.criteria.Location},
		{"seniority", v.criteria.Seniority},
	} {
		if strings.TrimSpace(c.value) != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", c.name, c.value))
		}
	}
	return strings.Join(parts, " ")
}

func printCandidate(out io.Writer, rec candidate.Record, similar []similarity.Match) {
	data, err := candidate.MarshalIndented(rec)
	if err != nil {
		fmt.Fprintf(out, "encoding candidate: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(data))

	b := candidate.ScoreBreakdown(rec)
	fmt.Fprintf(out, "score %d = skills %d + education %d + experience %d + certifications %d + links %d\n",
		b.Total(), b.Skills, b.Education, b.Experience, b.Certifications, b.Links,
	)

	if len(similar) == 0 {
		fmt.Fprintln(out, "no similar candidates")
		return
	}

	fmt.Fprintln(out, "similar candidates:")
	w := newTable(out)
	for _, m := range similar {
		fmt.Fprintf(w, "  %s\t%s\t%.0f%%\n", m.Candidate.FullName, m.Candidate.SeniorityLevel, m.Score*100)
	}
	w.Flush()
}

func printMatches(out io.Writer, required []string, matches []matching.Match) {
	fmt.Fprintf(out, "required skills: %s\n", strings.Join(required, ", "))
	if len(matches) == 0 {
		fmt.Fprintln(out, "no candidate has any of the required skills")
		return
	}

	w := newTable(out)
	fmt.Fprintln(w, "NAME\tMATCH\tSKILLS IN COMMON")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%.0f%%\t%s\n", m.Candidate.FullName, m.Score*100, strings.Join(m.Overlap, ", "))
	}
	w.Flush()
}

func printReport(out io.Writer, report store.Report) error {
	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Fprintln(out, string(pretty))
	return nil
}
