package candidate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-sieve/internal/extraction"
)

// Normalizer builds records from extraction payloads. It never fails: missing or
// malformed fields get their zero value.
type Normalizer struct {
	Now   func() time.Time
	NewID func() string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now, NewID: uuid.NewString}
}

// Normalize assembles a scored record from the raw payload.
func (n *Normalizer) Normalize(raw map[string]any, sourceFileName string) Record {
	now, newID := time.Now, uuid.NewString
	if n != nil && n.Now != nil {
		now = n.Now
	}
	if n != nil && n.NewID != nil {
		newID = n.NewID
	}

	rec := Record{
		ID:                          newID(),
		SourceFileName:              sourceFileName,
		FullName:                    coerceString(raw[extraction.FieldFullName]),
		Email:                       coerceString(raw[extraction.FieldEmail]),
		Phone:                       coerceString(raw[extraction.FieldPhone]),
		Location:                    coerceString(raw[extraction.FieldLocation]),
		LinkedInURL:                 coerceString(raw[extraction.FieldLinkedIn]),
		GithubURL:                   coerceString(raw[extraction.FieldGithub]),
		Skills:                      coerceStrings(raw[extraction.FieldSkills]),
		Education:                   coerceString(raw[extraction.FieldEducation]),
		WorkExperience:              coerceString(raw[extraction.FieldWorkExperience]),
		Certifications:              coerceString(raw[extraction.FieldCertifications]),
		SeniorityLevel:              ParseSeniority(coerceString(raw[extraction.FieldSeniority])),
		YearsOfExperience:           ParseYears(raw[extraction.FieldYearsOfExperience]),
		PrimaryIndustry:             coerceString(raw[extraction.FieldPrimaryIndustry]),
		PrimaryProgrammingLanguages: coerceStrings(raw[extraction.FieldProgrammingLangs]),
		ProcessedAt:                 now(),
	}
	rec.Rescore()

	return rec
}

// ParseYears converts any payload value to a non-negative number of years.
// Anything that is not a finite non-negative number becomes 0.
func ParseYears(v any) float64 {
	var years float64
	switch val := v.(type) {
	case float64:
		years = val
	case float32:
		years = float64(val)
	case int:
		years = float64(val)
	case int64:
		years = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		years = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		years = f
	default:
		return 0
	}

	if math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
		return 0
	}
	return years
}

func coerceString(v any) string {
	if v == nil {
		return ""
	}

	var s string
	if err := mapstructure.WeakDecode(v, &s); err == nil {
		return strings.TrimSpace(s)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return string(data)
}

// coerceStrings accepts a list or a comma separated string. Entries are trimmed and
// empty ones dropped; duplicates are kept.
func coerceStrings(v any) []string {
	result := []string{}

	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				result = append(result, s)
			}
		}
	case []string:
		for _, item := range val {
			if s := strings.TrimSpace(item); s != "" {
				result = append(result, s)
			}
		}
	case string:
		for _, item := range strings.Split(val, ",") {
			if s := strings.TrimSpace(item); s != "" {
				result = append(result, s)
			}
		}
	default:
		if s := coerceString(val); s != "" {
			result = append(result, s)
		}
	}

	return result
}
