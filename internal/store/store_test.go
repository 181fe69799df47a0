package store

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/spigell/resume-sieve/internal/candidate"
)

func record(id, file string, skills ...string) candidate.Record {
	return candidate.Record{
		ID:             id,
		SourceFileName: file,
		FullName:       "Candidate " + id,
		Skills:         skills,
		ProcessedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAddSkipsExistingFileWithoutOverwrite(t *testing.T) {
	t.Parallel()

	s := New()
	if status, err := s.Add(record("1", "resume.pdf"), false); err != nil || status != Added {
		t.Fatalf("unexpected first add: %v %v", status, err)
	}

	status, err := s.Add(record("2", "resume.pdf"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Skipped {
		t.Fatalf("expected skipped, got %v", status)
	}
	if s.Len() != 1 {
		t.Fatalf("expected size 1, got %d", s.Len())
	}
	if _, ok := s.Get("1"); !ok {
		t.Fatalf("original record must stay")
	}
}

func TestAddReplacesExistingFileWithOverwrite(t *testing.T) {
	t.Parallel()

	s := New()
	mustAdd(t, s, record("1", "resume.pdf"))
	mustAdd(t, s, record("2", "other.pdf"))

	status, err := s.Add(record("3", "resume.pdf"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Replaced || status.String() != "replaced" {
		t.Fatalf("expected replaced, got %v", status)
	}
	if s.Len() != 2 {
		t.Fatalf("expected size 2, got %d", s.Len())
	}

	all := s.All()
	if all[0].ID != "2" || all[1].ID != "3" {
		t.Fatalf("replacement must be appended: %v, %v", all[0].ID, all[1].ID)
	}
	if _, ok := s.Get("1"); ok {
		t.Fatalf("old record must be removed")
	}
}

func TestAddRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	s := New()
	mustAdd(t, s, record("1", "a.pdf"))
	if _, err := s.Add(record("1", "b.pdf"), false); err == nil {
		t.Fatal("expected duplicate id to fail")
	}
	if _, err := s.Add(record("", "c.pdf"), false); err == nil {
		t.Fatal("expected empty id to fail")
	}
}

func TestAllReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New()
	rec := record("1", "a.pdf", "Go")
	mustAdd(t, s, rec)
	rec.Skills[0] = "mutated"

	all := s.All()
	if all[0].Skills[0] != "Go" {
		t.Fatalf("store must copy records on add")
	}
	all[0].Skills[0] = "changed"
	if got, _ := s.Get("1"); got.Skills[0] != "Go" {
		t.Fatalf("store must copy records on read")
	}
}

func TestEditPreservesIdentityAndRescores(t *testing.T) {
	t.Parallel()

	s := New()
	original := record("1", "a.pdf", "Go")
	original.Score = candidate.Score(original)
	mustAdd(t, s, original)

	update := candidate.Record{
		ID:             "ignored",
		SourceFileName: "ignored.pdf",
		FullName:       "Edited",
		Skills:         []string{"Go", "SQL", "K8s"},
		GithubURL:      "https://github.com/edited",
		ProcessedAt:    time.Now(),
		Score:          99,
	}

	edited, err := s.Edit("1", update)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if edited.ID != "1" || edited.SourceFileName != "a.pdf" || !edited.ProcessedAt.Equal(original.ProcessedAt) {
		t.Fatalf("identity fields must be preserved: %+v", edited)
	}
	if edited.FullName != "Edited" || edited.Score != 6+5 {
		t.Fatalf("unexpected edited record: %+v", edited)
	}
	if got, _ := s.Get("1"); got.Score != edited.Score {
		t.Fatalf("stored record must carry the new score")
	}

	if _, err := s.Edit("missing", update); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditSanitizesRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		years      float64
		skills     []string
		langs      []string
		wantYears  float64
		wantSkills []string
		wantLangs  []string
	}{
		{name: "negative years", years: -4, skills: []string{"Go"}, wantYears: 0, wantSkills: []string{"Go"}, wantLangs: []string{}},
		{name: "nan years", years: math.NaN(), wantYears: 0, wantSkills: []string{}, wantLangs: []string{}},
		{name: "infinite years", years: math.Inf(1), wantYears: 0, wantSkills: []string{}, wantLangs: []string{}},
		{
			name:       "blank entries",
			years:      3,
			skills:     []string{"", "  ", " Go "},
			langs:      []string{"\t", "Go"},
			wantYears:  3,
			wantSkills: []string{"Go"},
			wantLangs:  []string{"Go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := New()
			mustAdd(t, s, record("1", "a.pdf", "Go"))

			edited, err := s.Edit("1", candidate.Record{
				Skills:                      tt.skills,
				PrimaryProgrammingLanguages: tt.langs,
				YearsOfExperience:           tt.years,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if edited.YearsOfExperience != tt.wantYears {
				t.Fatalf("expected years %v, got %v", tt.wantYears, edited.YearsOfExperience)
			}
			if !slices.Equal(edited.Skills, tt.wantSkills) || !slices.Equal(edited.PrimaryProgrammingLanguages, tt.wantLangs) {
				t.Fatalf("unexpected lists: %q %q", edited.Skills, edited.PrimaryProgrammingLanguages)
			}

			want := candidate.Score(candidate.Record{Skills: tt.wantSkills, YearsOfExperience: tt.wantYears})
			if edited.Score != want {
				t.Fatalf("expected score %d, got %d", want, edited.Score)
			}

			name, err := s.DumpToTmpFile()
			if err != nil {
				t.Fatalf("dump after edit: %v", err)
			}
			t.Cleanup(func() { os.Remove(name) })
		})
	}
}

func TestDeleteAndClear(t *testing.T) {
	t.Parallel()

	s := New()
	mustAdd(t, s, record("1", "a.pdf"))
	mustAdd(t, s, record("2", "b.pdf"))

	if err := s.Delete("1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasFile("a.pdf") || !s.HasFile("b.pdf") {
		t.Fatalf("unexpected files after delete")
	}
	if err := s.Delete("1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s.Clear()
	if s.Len() != 0 || len(s.All()) != 0 {
		t.Fatalf("expected empty store after clear")
	}
	mustAdd(t, s, record("3", "a.pdf"))
	if s.Len() != 1 {
		t.Fatalf("store must be usable after clear")
	}
}

func TestConcurrentAddsOfSameFile(t *testing.T) {
	t.Parallel()

	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := record(string(rune('A'+i)), "same.pdf")
			if _, err := s.Add(rec, i%2 == 0); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Fatalf("expected exactly one record per file, got %d", s.Len())
	}
}

func TestReport(t *testing.T) {
	t.Parallel()

	s := New()
	a := record("1", "a.pdf", "Go", "SQL", "go")
	a.SeniorityLevel, a.Score, a.YearsOfExperience = candidate.SenioritySenior, 60, 8
	b := record("2", "b.pdf", "sql", "Rust")
	b.SeniorityLevel, b.Score, b.YearsOfExperience = candidate.SenioritySenior, 40, 4
	c := record("3", "c.pdf")
	c.SeniorityLevel = candidate.SeniorityUnknown
	for _, rec := range []candidate.Record{a, b, c} {
		mustAdd(t, s, rec)
	}

	report := s.Report()
	if report.Candidates != 3 {
		t.Fatalf("unexpected count: %d", report.Candidates)
	}
	if report.BySeniority[candidate.SenioritySenior] != 2 || report.BySeniority[candidate.SeniorityUnknown] != 1 {
		t.Fatalf("unexpected seniority counts: %v", report.BySeniority)
	}
	if report.AverageScore != 100.0/3 || report.AverageYears != 4 {
		t.Fatalf("unexpected averages: %v %v", report.AverageScore, report.AverageYears)
	}

	want := []SkillCount{{"SQL", 2}, {"Go", 1}, {"Rust", 1}}
	if len(report.TopSkills) != len(want) {
		t.Fatalf("unexpected top skills: %+v", report.TopSkills)
	}
	for i := range want {
		if report.TopSkills[i] != want[i] {
			t.Fatalf("position %d: expected %+v, got %+v", i, want[i], report.TopSkills[i])
		}
	}

	empty := New().Report()
	if empty.Candidates != 0 || empty.TopSkills == nil {
		t.Fatalf("unexpected empty report: %+v", empty)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	s := New()
	mustAdd(t, s, record("1", "a.pdf", "Go"))

	name, err := s.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	var decoded []candidate.Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "1" || decoded[0].Skills[0] != "Go" {
		t.Fatalf("unexpected dump: %+v", decoded)
	}
}

func mustAdd(t *testing.T, s *Store, rec candidate.Record) {
	t.Helper()
	if _, err := s.Add(rec, false); err != nil {
		t.Fatalf("add %s: %v", rec.ID, err)
	}
}
