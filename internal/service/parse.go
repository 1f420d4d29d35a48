package service

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencePattern matches markdown code-fence markers with or without a
// language tag, anywhere in the string.
var fencePattern = regexp.MustCompile("```(?:json)?")

// ParseModelJSON extracts a strict JSON object from a raw model response.
// Code fences are stripped first; the remainder must decode cleanly.
// A false return is the expected "no result" branch, not a failure the
// caller should propagate.
func ParseModelJSON(raw string) (map[string]interface{}, bool) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return nil, false
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, false
	}
	return out, true
}

// ParseModelJSONInto decodes a fence-stripped model response into the given
// typed destination.
func ParseModelJSONInto(raw string, dest interface{}) bool {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return false
	}
	return json.Unmarshal([]byte(cleaned), dest) == nil
}
