package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/document"
	"github.com/spigell/resume-sieve/internal/extraction"
	"github.com/spigell/resume-sieve/internal/store"
)

type stubParser struct {
	calls   []string
	results map[string]*extraction.Result
	errs    map[string]error
}

func (s *stubParser) ParseResume(_ context.Context, text string) (*extraction.Result, error) {
	s.calls = append(s.calls, text)
	if err, ok := s.errs[text]; ok {
		return nil, err
	}
	if res, ok := s.results[text]; ok {
		return res, nil
	}
	return &extraction.Result{Payload: map[string]any{"Full Name": text}, Attempts: 1}, nil
}

func newTestProcessor(parser *stubParser, st *store.Store, log *zap.Logger) *Processor {
	p := NewProcessor(parser, st, log)
	ids := 0
	p.Normalizer = &candidate.Normalizer{
		Now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string {
			ids++
			return "id-" + string(rune('0'+ids))
		},
	}
	return p
}

func textFile(name, content string) document.File {
	return document.File{Name: name, Content: []byte(content)}
}

func TestProcessBatchContinuesAfterFailures(t *testing.T) {
	parser := &stubParser{
		errs: map[string]error{
			"bad reply": &extraction.ClientError{Kind: extraction.ErrNoJSONFound, Attempts: 1, Raw: "sorry"},
			"busy":      &extraction.ClientError{Kind: extraction.ErrServiceUnavailable, Attempts: 3},
		},
	}
	st := store.New()
	core, observed := observer.New(zapcore.InfoLevel)

	results := newTestProcessor(parser, st, zap.New(core)).Process(context.Background(), []document.File{
		textFile("ann.txt", "Ann"),
		textFile("photo.png", "binary"),
		textFile("bad.txt", "bad reply"),
		textFile("busy.txt", "busy"),
		textFile("empty.txt", "   "),
		textFile("bo.md", "Bo"),
	}, false)

	want := []struct {
		status Status
		kind   string
	}{
		{StatusAdded, ""},
		{StatusFailed, "unsupported_format"},
		{StatusFailed, "no_json_found"},
		{StatusFailed, "service_unavailable"},
		{StatusFailed, "empty_extraction"},
		{StatusAdded, ""},
	}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, w := range want {
		if results[i].Status != w.status || results[i].Kind != w.kind {
			t.Fatalf("result %d (%s): expected %s/%s, got %s/%s (%v)",
				i, results[i].FileName, w.status, w.kind, results[i].Status, results[i].Kind, results[i].Err)
		}
	}
	if results[3].Attempts != 3 {
		t.Fatalf("expected attempts from the client error, got %d", results[3].Attempts)
	}

	if st.Len() != 2 {
		t.Fatalf("expected 2 stored records, got %d", st.Len())
	}
	if len(parser.calls) != 4 {
		t.Fatalf("files failing extraction must not reach the parser, got %v", parser.calls)
	}

	if got := len(observed.FilterMessage("document failed").All()); got != 4 {
		t.Fatalf("expected 4 failure logs, got %d", got)
	}
	summary := Summary(results)
	if summary[StatusAdded] != 2 || summary[StatusFailed] != 4 {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestProcessOverwriteRules(t *testing.T) {
	parser := &stubParser{}
	st := store.New()
	p := newTestProcessor(parser, st, nil)

	first := p.Process(context.Background(), []document.File{textFile("resume.txt", "Ann")}, false)
	if first[0].Status != StatusAdded || first[0].CandidateID != "id-1" {
		t.Fatalf("unexpected first result: %+v", first[0])
	}

	skipped := p.Process(context.Background(), []document.File{textFile("resume.txt", "Ann v2")}, false)
	if skipped[0].Status != StatusSkipped {
		t.Fatalf("expected skip, got %+v", skipped[0])
	}
	if len(parser.calls) != 1 {
		t.Fatalf("skipped files must not call the service, got %d calls", len(parser.calls))
	}

	replaced := p.Process(context.Background(), []document.File{textFile("resume.txt", "Ann v3")}, true)
	if replaced[0].Status != StatusReplaced {
		t.Fatalf("expected replace, got %+v", replaced[0])
	}
	if st.Len() != 1 {
		t.Fatalf("expected store size 1, got %d", st.Len())
	}
	rec, ok := st.Get(replaced[0].CandidateID)
	if !ok || rec.FullName != "Ann v3" {
		t.Fatalf("expected the new record to be stored, got %+v", rec)
	}
}

func TestProcessPassesWarnings(t *testing.T) {
	parser := &stubParser{results: map[string]*extraction.Result{
		"Ann": {Payload: map[string]any{"Full Name": "Ann", "Skills": "Go, SQL"}, Attempts: 2, Warnings: []string{"Skills: Invalid type"}},
	}}
	st := store.New()

	results := newTestProcessor(parser, st, nil).Process(context.Background(), []document.File{textFile("ann.txt", "Ann")}, false)
	if results[0].Attempts != 2 || len(results[0].Warnings) != 1 {
		t.Fatalf("unexpected result: %+v", results[0])
	}
	rec, _ := st.Get(results[0].CandidateID)
	if len(rec.Skills) != 2 || rec.Score != 4 {
		t.Fatalf("unexpected stored record: %+v", rec)
	}
}

func TestProcessStopsCallingServiceAfterCancel(t *testing.T) {
	parser := &stubParser{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newTestProcessor(parser, store.New(), nil).Process(ctx, []document.File{textFile("a.txt", "A")}, false)
	if results[0].Status != StatusFailed || results[0].Kind != kindCanceled {
		t.Fatalf("unexpected result: %+v", results[0])
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("expected context error, got %v", results[0].Err)
	}
	if len(parser.calls) != 0 {
		t.Fatalf("expected no service calls")
	}
}

func TestProcessPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ann.txt")
	if err := os.WriteFile(path, []byte("Ann"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	results := newTestProcessor(&stubParser{}, store.New(), nil).ProcessPaths(context.Background(),
		[]string{path, filepath.Join(dir, "missing.pdf")}, false)

	if results[0].Status != StatusAdded || results[0].FileName != "ann.txt" {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Status != StatusFailed || results[1].Kind != "io_error" || results[1].FileName != "missing.pdf" {
		t.Fatalf("unexpected second result: %+v", results[1])
	}
}
