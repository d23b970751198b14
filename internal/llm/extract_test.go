package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name          string
		raw           string
		expectedError bool
		expectedTitle string
		expectedCount int
	}{
		{
			name:          "raw JSON",
			raw:           `{"title":"React Hooks","count":4}`,
			expectedTitle: "React Hooks",
			expectedCount: 4,
		},
		{
			name:          "raw JSON with surrounding whitespace",
			raw:           "\n\t {\"title\":\"React Hooks\",\"count\":4} \n",
			expectedTitle: "React Hooks",
			expectedCount: 4,
		},
		{
			name:          "fenced JSON",
			raw:           "```json\n{\"title\":\"Promises\",\"count\":2}\n```",
			expectedTitle: "Promises",
			expectedCount: 2,
		},
		{
			name:          "fenced JSON wrapped in prose",
			raw:           "Sure! Here is the plan you asked for:\n```json\n{\"title\":\"K-Maps\",\"count\":5}\n```\nLet me know if you need anything else.",
			expectedTitle: "K-Maps",
			expectedCount: 5,
		},
		{
			name:          "plain prose",
			raw:           "I could not produce a structured answer this time, sorry.",
			expectedError: true,
		},
		{
			name:          "fenced block with invalid JSON",
			raw:           "```json\n{not json}\n```",
			expectedError: true,
		},
		{
			name:          "empty string",
			raw:           "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out payload
			err := ExtractJSON(tt.raw, &out)

			if tt.expectedError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedCompletion)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedTitle, out.Title)
			assert.Equal(t, tt.expectedCount, out.Count)
		})
	}
}

func TestExtractJSON_ArrayPayload(t *testing.T) {
	var out []map[string]any
	err := ExtractJSON("```json\n[{\"sequenceNumber\":1},{\"sequenceNumber\":2}]\n```", &out)

	require.NoError(t, err)
	assert.Len(t, out, 2)
}
