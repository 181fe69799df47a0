package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/extraction"
	"github.com/spigell/resume-sieve/internal/filtering"
	"github.com/spigell/resume-sieve/internal/matching"
	"github.com/spigell/resume-sieve/internal/paging"
	"github.com/spigell/resume-sieve/internal/similarity"
	"github.com/spigell/resume-sieve/internal/store"
	"github.com/spigell/resume-sieve/internal/utils"
)

const (
	PromptSearch     = "Search"
	PromptSort       = "Sort"
	PromptNext       = "Next page"
	PromptPrev       = "Previous page"
	PromptShow       = "Show candidate"
	PromptEdit       = "Edit candidate"
	PromptDelete     = "Delete candidate"
	PromptClear      = "Clear all candidates"
	PromptMatch      = "Match job description"
	PromptReport     = "Report"
	PromptExportCSV  = "Export candidates to CSV"
	PromptExportJSON = "Export candidate to JSON"
	PromptDump       = "Dump candidates to file"
	PromptExit       = "Exit"
	PromptBack       = "back"

	matchByDescription = "Extract skills from a job description"
	matchBySkills      = "Enter required skills manually"
)

var (
	errExit         = errors.New("exit requested")
	errNoCandidates = errors.New("no candidates on the current page")
)

var actions = []string{
	PromptSearch, PromptSort, PromptNext, PromptPrev, PromptShow, PromptEdit, PromptDelete,
	PromptClear, PromptMatch, PromptReport, PromptExportCSV, PromptExportJSON, PromptDump, PromptExit,
}

// editableFields are the record fields a user may change, labelled as in the extraction prompt.
var editableFields = []string{
	extraction.FieldFullName,
	extraction.FieldEmail,
	extraction.FieldPhone,
	extraction.FieldLocation,
	extraction.FieldLinkedIn,
	extraction.FieldGithub,
	extraction.FieldSkills,
	extraction.FieldEducation,
	extraction.FieldWorkExperience,
	extraction.FieldCertifications,
	extraction.FieldSeniority,
	extraction.FieldYearsOfExperience,
	extraction.FieldPrimaryIndustry,
	extraction.FieldProgrammingLangs,
}

type view struct {
	criteria filtering.Criteria
	sortKey  filtering.SortKey
	page     int
	pageSize int
}

type session struct {
	store     *store.Store
	matcher   *matching.Matcher
	threshold float64
	view      view
	out       io.Writer
	logger    *zap.Logger
}

func newSession(st *store.Store, matcher *matching.Matcher, cfg BrowseConfig, out io.Writer, logger *zap.Logger) *session {
	if logger == nil {
		logger = zap.NewNop()
	}

	sortKey := filtering.SortKey(cfg.Sort)
	if !filtering.ValidSortKey(sortKey) {
		sortKey = filtering.SortRecent
	}

	return &session{
		store:     st,
		matcher:   matcher,
		threshold: cfg.SimilarityThreshold,
		view:      view{sortKey: sortKey, pageSize: max(cfg.PageSize, 1)},
		out:       out,
		logger:    logger,
	}
}

// results returns the filtered and sorted candidates.
func (s *session) results() ([]candidate.Record, error) {
	steps := filtering.Steps()
	filtered, err := filtering.Run(s.logger, &s.view.criteria, steps, s.store.All())
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}
	s.logger.Debug("filters applied", zap.Any("steps", filtering.Describe(steps)), zap.Int("left", len(filtered)))
	return filtering.Sort(filtered, s.view.sortKey), nil
}

// current returns the page being viewed, moving the page index back into range
// when the result set has shrunk.
func (s *session) current() (paging.Page[candidate.Record], error) {
	records, err := s.results()
	if err != nil {
		return paging.Page[candidate.Record]{}, err
	}

	page := paging.New(records, s.view.page, s.view.pageSize)
	s.view.page = page.Index
	return page, nil
}

type batchOptions struct {
	exportCSV      string
	exportJSONDir  string
	jobDescription string
	jobSkills      string
}

// batch prints the current page, writes the requested exports and ranks candidates
// against a job when one is given.
func (s *session) batch(ctx context.Context, opts batchOptions) error {
	page, err := s.current()
	if err != nil {
		return err
	}
	printPage(s.out, page, s.view)

	if opts.exportCSV != "" || opts.exportJSONDir != "" {
		records, err := s.results()
		if err != nil {
			return err
		}

		if opts.exportCSV != "" {
			if err := writeCSVFile(opts.exportCSV, records); err != nil {
				return err
			}
			s.logger.Info("candidates exported", zap.String("filename", opts.exportCSV), zap.Int("count", len(records)))
		}

		if opts.exportJSONDir != "" {
			for _, rec := range records {
				if _, err := writeJSONFile(opts.exportJSONDir, rec); err != nil {
					return err
				}
			}
			s.logger.Info("candidates exported", zap.String("directory", opts.exportJSONDir), zap.Int("count", len(records)))
		}
	}

	if opts.jobDescription != "" || opts.jobSkills != "" {
		return s.match(ctx, opts.jobDescription, opts.jobSkills)
	}

	return nil
}

// match ranks every stored candidate against manually given skills or, when none are
// given, against the skills extracted from the description.
func (s *session) match(ctx context.Context, description, skills string) error {
	required := matching.ParseSkills(skills)
	if len(required) == 0 {
		if s.matcher == nil {
			return errors.New("job matching is not available")
		}
		extracted, err := s.matcher.ExtractSkills(ctx, description)
		if err != nil {
			return err
		}
		required = matching.ParseSkills(strings.Join(extracted, ","))
	}

	matches := matching.Rank(required, s.store.All())
	s.logger.Info("candidates matched", zap.Int("required_skills", len(required)), zap.Int("matched", len(matches)))
	printMatches(s.out, required, matches)
	return nil
}

func (s *session) interactive(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		page, err := s.current()
		if err != nil {
			return err
		}
		printPage(s.out, page, s.view)

		prompt := promptui.Select{
			Label: "Choose an action",
			Items: actions,
			Size:  len(actions),
		}
		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		if err := s.handleAction(ctx, action, page); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			s.logger.Warn("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string, page paging.Page[candidate.Record]) error {
	switch action {
	case PromptSearch:
		return s.search()
	case PromptSort:
		return s.chooseSort()
	case PromptNext:
		if page.HasNext() {
			s.view.page++
		}
		return nil
	case PromptPrev:
		if page.HasPrev() {
			s.view.page--
		}
		return nil
	case PromptShow:
		rec, err := chooseCandidate(page)
		if err != nil {
			return err
		}
		printCandidate(s.out, rec, similarity.FindSimilar(rec, s.store.All(), s.threshold))
		return nil
	case PromptEdit:
		return s.edit(page)
	case PromptDelete:
		rec, err := chooseCandidate(page)
		if err != nil {
			return err
		}
		if !confirm(fmt.Sprintf("Delete %s", label(rec))) {
			return nil
		}
		if err := s.store.Delete(rec.ID); err != nil {
			return err
		}
		s.logger.Info("candidate deleted", zap.String("candidate_id", rec.ID))
		return nil
	case PromptClear:
		if !confirm(fmt.Sprintf("Delete all %d candidates", s.store.Len())) {
			return nil
		}
		s.store.Clear()
		s.view.page = 0
		s.logger.Info("all candidates deleted")
		return nil
	case PromptMatch:
		return s.matchPrompt(ctx)
	case PromptReport:
		return printReport(s.out, s.store.Report())
	case PromptExportCSV:
		path, err := ask("CSV file", "candidates.csv")
		if err != nil {
			return err
		}
		records, err := s.results()
		if err != nil {
			return err
		}
		if err := writeCSVFile(path, records); err != nil {
			return err
		}
		s.logger.Info("candidates exported", zap.String("filename", path), zap.Int("count", len(records)))
		return nil
	case PromptExportJSON:
		rec, err := chooseCandidate(page)
		if err != nil {
			return err
		}
		dir, err := ask("Directory", ".")
		if err != nil {
			return err
		}
		path, err := writeJSONFile(dir, rec)
		if err != nil {
			return err
		}
		s.logger.Info("candidate exported", zap.String("filename", path))
		return nil
	case PromptDump:
		filename, err := s.store.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump candidates to file: %w", err)
		}
		s.logger.Info("dumping candidates to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *session) search() error {
	c := &s.view.criteria

	fields := []struct {
		label string
		value *string
	}{
		{"Name contains", &c.Name},
		{"Skills (comma separated)", &c.Skills},
		{"Location (comma separated)", &c.Location},
		{"Seniority (comma separated)", &c.Seniority},
	}
	for _, f := range fields {
		value, err := ask(f.label, *f.value)
		if err != nil {
			return err
		}
		*f.value = value
	}

	s.view.page = 0
	return nil
}

func (s *session) chooseSort() error {
	items := make([]string, 0, len(filtering.SortKeys))
	for _, key := range filtering.SortKeys {
		items = append(items, string(key))
	}

	prompt := promptui.Select{Label: "Sort by", Items: items}
	_, selected, err := prompt.Run()
	if err != nil {
		return err
	}

	s.view.sortKey = filtering.SortKey(selected)
	s.view.page = 0
	return nil
}

func (s *session) edit(page paging.Page[candidate.Record]) error {
	rec, err := chooseCandidate(page)
	if err != nil {
		return err
	}

	prompt := promptui.Select{
		Label: "Field to edit",
		Items: append(append([]string{}, editableFields...), PromptBack),
		Size:  len(editableFields) + 1,
	}
	_, field, err := prompt.Run()
	if err != nil || field == PromptBack {
		return err
	}

	value, err := ask(field, fieldValue(rec, field))
	if err != nil {
		return err
	}
	if err := setField(&rec, field, value); err != nil {
		return err
	}

	updated, err := s.store.Edit(rec.ID, rec)
	if err != nil {
		return err
	}
	s.logger.Info("candidate updated",
		zap.String("candidate_id", updated.ID),
		zap.String("field", field),
		zap.Int("score", updated.Score),
	)
	return nil
}

func (s *session) matchPrompt(ctx context.Context) error {
	prompt := promptui.Select{Label: "Required skills", Items: []string{matchByDescription, matchBySkills, PromptBack}}
	_, mode, err := prompt.Run()
	if err != nil || mode == PromptBack {
		return err
	}

	if mode == matchBySkills {
		skills, err := ask("Skills (comma separated)", "")
		if err != nil {
			return err
		}
		if len(matching.ParseSkills(skills)) == 0 {
			return errors.New("no skills given")
		}
		return s.match(ctx, "", skills)
	}

	description, err := ask("Job description", "")
	if err != nil {
		return err
	}
	return s.match(ctx, description, "")
}

func chooseCandidate(page paging.Page[candidate.Record]) (candidate.Record, error) {
	if len(page.Items) == 0 {
		return candidate.Record{}, errNoCandidates
	}

	items := make([]string, 0, len(page.Items)+1)
	for _, rec := range page.Items {
		items = append(items, label(rec))
	}

	prompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(items, PromptBack),
		Size:  len(items) + 1,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return candidate.Record{}, err
	}
	if idx == len(page.Items) {
		return candidate.Record{}, errors.New("nothing chosen")
	}

	return page.Items[idx], nil
}

func ask(label, current string) (string, error) {
	prompt := promptui.Prompt{Label: label, Default: current, AllowEdit: true}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func confirm(label string) bool {
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := prompt.Run()
	return err == nil
}

func label(rec candidate.Record) string {
	name := rec.FullName
	if name == "" {
		name = "(no name)"
	}
	return fmt.Sprintf("%s / %s / %s", name, rec.SeniorityLevel, rec.SourceFileName)
}

func fieldValue(rec candidate.Record, field string) string {
	switch field {
	case extraction.FieldFullName:
		return rec.FullName
	case extraction.FieldEmail:
		return rec.Email
	case extraction.FieldPhone:
		return rec.Phone
	case extraction.FieldLocation:
		return rec.Location
	case extraction.FieldLinkedIn:
		return rec.LinkedInURL
	case extraction.FieldGithub:
		return rec.GithubURL
	case extraction.FieldSkills:
		return strings.Join(rec.Skills, ", ")
	case extraction.FieldEducation:
		return rec.Education
	case extraction.FieldWorkExperience:
		return rec.WorkExperience
	case extraction.FieldCertifications:
		return rec.Certifications
	case extraction.FieldSeniority:
		return string(rec.SeniorityLevel)
	case extraction.FieldYearsOfExperience:
		return strconv.FormatFloat(rec.YearsOfExperience, 'f', -1, 64)
	case extraction.FieldPrimaryIndustry:
		return rec.PrimaryIndustry
	case extraction.FieldProgrammingLangs:
		return strings.Join(rec.PrimaryProgrammingLanguages, ", ")
	}
	return ""
}

// setField stores value into the named field. List fields take comma separated
// values; seniority and years are validated.
func setField(rec *candidate.Record, field, value string) error {
	value = strings.TrimSpace(value)

	switch field {
	case extraction.FieldFullName:
		rec.FullName = value
	case extraction.FieldEmail:
		rec.Email = value
	case extraction.FieldPhone:
		rec.Phone = value
	case extraction.FieldLocation:
		rec.Location = value
	case extraction.FieldLinkedIn:
		rec.LinkedInURL = value
	case extraction.FieldGithub:
		rec.GithubURL = value
	case extraction.FieldSkills:
		rec.Skills = splitList(value)
	case extraction.FieldEducation:
		rec.Education = value
	case extraction.FieldWorkExperience:
		rec.WorkExperience = value
	case extraction.FieldCertifications:
		rec.Certifications = value
	case extraction.FieldSeniority:
		seniority := candidate.ParseSeniority(value)
		if seniority == candidate.SeniorityUnknown && value != "" && !strings.EqualFold(value, string(candidate.SeniorityUnknown)) {
			return fmt.Errorf("unknown seniority level %q", value)
		}
		rec.SeniorityLevel = seniority
	case extraction.FieldYearsOfExperience:
		years, err := strconv.ParseFloat(value, 64)
		if err != nil || years < 0 || math.IsNaN(years) || math.IsInf(years, 0) {
			return fmt.Errorf("years of experience must be a non-negative number, got %q", value)
		}
		rec.YearsOfExperience = years
	case extraction.FieldPrimaryIndustry:
		rec.PrimaryIndustry = value
	case extraction.FieldProgrammingLangs:
		rec.PrimaryProgrammingLanguages = splitList(value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}

	return nil
}

func splitList(value string) []string {
	terms := utils.SplitTerms(value)
	if terms == nil {
		return []string{}
	}
	return terms
}

func writeCSVFile(path string, records []candidate.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}

	if err := candidate.WriteCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("writing csv file: %w", err)
	}

	return f.Close()
}

// writeJSONFile writes rec as <id>.json inside dir and returns the file path.
func writeJSONFile(dir string, rec candidate.Record) (string, error) {
	data, err := candidate.MarshalIndented(rec)
	if err != nil {
		return "", fmt.Errorf("encoding candidate %s: %w", rec.ID, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, rec.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing candidate %s: %w", rec.ID, err)
	}

	return path, nil
}
