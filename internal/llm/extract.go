package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedCompletion indicates that no valid JSON could be located in a
// completion. The provider gives no schema guarantee and non-deterministically
// wraps structured answers in prose or markdown fences.
var ErrMalformedCompletion = errors.New("no valid JSON found in completion")

var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON parses a raw completion string into v.
//
// The trimmed string is tried as strict JSON first; on failure the first
// ```json fenced block is parsed instead. If neither succeeds the returned
// error wraps ErrMalformedCompletion.
func ExtractJSON(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	match := jsonFencePattern.FindStringSubmatch(raw)
	if match == nil {
		return ErrMalformedCompletion
	}

	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), v); err != nil {
		return fmt.Errorf("%w: fenced block is not valid JSON: %v", ErrMalformedCompletion, err)
	}

	return nil
}
