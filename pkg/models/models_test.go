package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictJSONRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		verdict  Verdict
		expected string
	}{
		{
			name:     "User error serializes as true",
			verdict:  VerdictUserError,
			expected: "true",
		},
		{
			name:     "Not user error serializes as false",
			verdict:  VerdictNotUserError,
			expected: "false",
		},
		{
			name:     "Unknown serializes as null",
			verdict:  VerdictUnknown,
			expected: "null",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.verdict)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(data))

			var back Verdict
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tc.verdict, back)
		})
	}
}

func TestVerdictUnmarshalRejectsGarbage(t *testing.T) {
	var v Verdict
	err := json.Unmarshal([]byte(`"maybe"`), &v)
	assert.Error(t, err)
}

func TestParseConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ParseConfidence("high"))
	assert.Equal(t, ConfidenceMedium, ParseConfidence("medium"))
	assert.Equal(t, ConfidenceLow, ParseConfidence("low"))
	assert.Equal(t, ConfidenceLow, ParseConfidence(""))
	assert.Equal(t, ConfidenceLow, ParseConfidence("certain"))
}

func TestClassificationResultJSONFieldNames(t *testing.T) {
	result := ClassificationResult{
		IssueNumber: 7,
		Title:       "DataLoader hangs with num_workers > 0",
		URL:         "https://github.com/pytorch/pytorch/issues/7",
		State:       "open",
		Labels:      []string{"module: dataloader"},
		IsUserError: VerdictNotUserError,
		Confidence:  ConfidenceHigh,
		Reasoning:   "Deadlock in worker shutdown path, needs a fix",
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(7), raw["issue_number"])
	assert.Equal(t, false, raw["is_user_error"])
	assert.Equal(t, "high", raw["confidence"])
	assert.Contains(t, raw, "reasoning")
}
