package candidate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVHeader is the fixed column order of WriteCSV.
var CSVHeader = []string{
	"Full Name",
	"Email",
	"Phone Number",
	"Location",
	"LinkedIn URL",
	"Github URL",
	"Skills",
	"Seniority Level",
	"Years of Experience",
	"Primary Industry",
}

// WriteCSV writes one row per record after the header.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.FullName,
			r.Email,
			r.Phone,
			r.Location,
			r.LinkedInURL,
			r.GithubURL,
			strings.Join(r.Skills, ", "),
			string(r.SeniorityLevel),
			strconv.FormatFloat(r.YearsOfExperience, 'f', -1, 64),
			r.PrimaryIndustry,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", r.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// MarshalIndented serialises a single record with the canonical field names.
func MarshalIndented(r Record) ([]byte, error) {
	r = r.Clone()
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate %s: %w", r.ID, err)
	}
	return data, nil
}
