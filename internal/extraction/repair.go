package extraction

import (
	"encoding/json"
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,\s*}`)

// ExtractJSON returns the widest span from the first '{' to the last '}' of raw.
// Prose and code fences around the object are dropped.
func ExtractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return "", ErrNoJSONFound
	}
	return raw[start : end+1], nil
}

// StripTrailingCommas removes commas that directly precede a closing brace.
// Commas before ']' are left alone.
func StripTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "}")
}

// Parse extracts the JSON object from a service reply. It tries a strict parse
// first and a single retry after trailing comma cleanup; repaired reports whether
// the cleanup was needed. Failures are *ClientError carrying the raw reply.
func Parse(raw string) (payload map[string]any, repaired bool, err error) {
	span, err := ExtractJSON(raw)
	if err != nil {
		return nil, false, &ClientError{Kind: ErrNoJSONFound, Raw: raw}
	}

	if err := json.Unmarshal([]byte(span), &payload); err == nil {
		return payload, false, nil
	}

	payload = nil
	if err := json.Unmarshal([]byte(StripTrailingCommas(span)), &payload); err != nil {
		return nil, false, &ClientError{Kind: ErrMalformedJSON, Raw: raw, Err: err}
	}
	return payload, true, nil
}
