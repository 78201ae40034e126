package oracle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/danielolaszy/triage/pkg/models"
)

// responsePayload mirrors the mandatory three-field response contract.
// is_user_error is kept raw because the model may answer with a boolean,
// null, or the string "uncertain".
type responsePayload struct {
	IsUserError json.RawMessage `json:"is_user_error"`
	Confidence  string          `json:"confidence"`
	Reasoning   string          `json:"reasoning"`
}

// embeddedObjectPattern salvages a contract object wrapped in prose.
var embeddedObjectPattern = regexp.MustCompile(`\{[^{}]*"is_user_error"[^{}]*\}`)

// ParseResponse validates oracle output against the response contract.
// Markdown code fences around the JSON are tolerated; as a last resort a
// single contract object is extracted from surrounding text. Anything else
// is a non-conforming response.
func ParseResponse(text string) (Classification, error) {
	cleaned := stripCodeFences(text)

	var payload responsePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		match := embeddedObjectPattern.FindString(cleaned)
		if match == "" {
			return Classification{}, fmt.Errorf("non-conforming oracle response: %w (response: %s)", err, truncate(text, 200))
		}
		if err := json.Unmarshal([]byte(match), &payload); err != nil {
			return Classification{}, fmt.Errorf("non-conforming oracle response: %w (response: %s)", err, truncate(text, 200))
		}
	}

	verdict, err := parseVerdict(payload.IsUserError)
	if err != nil {
		return Classification{}, err
	}

	reasoning := strings.TrimSpace(payload.Reasoning)
	if reasoning == "" {
		return Classification{}, fmt.Errorf("non-conforming oracle response: empty reasoning")
	}

	return Classification{
		IsUserError: verdict,
		Confidence:  models.ParseConfidence(payload.Confidence),
		Reasoning:   reasoning,
	}, nil
}

func parseVerdict(raw json.RawMessage) (models.Verdict, error) {
	switch strings.TrimSpace(string(raw)) {
	case "true":
		return models.VerdictUserError, nil
	case "false":
		return models.VerdictNotUserError, nil
	case "null", `"uncertain"`, `"unknown"`:
		return models.VerdictUnknown, nil
	case "":
		return models.VerdictUnknown, fmt.Errorf("non-conforming oracle response: missing is_user_error")
	default:
		return models.VerdictUnknown, fmt.Errorf("non-conforming oracle response: invalid is_user_error %s", string(raw))
	}
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "```json") {
		start := strings.Index(text, "```json") + len("```json")
		if end := strings.Index(text[start:], "```"); end >= 0 {
			return strings.TrimSpace(text[start : start+end])
		}
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
