package review

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultConfidenceThreshold is the minimum confidence a bug must carry to
// be kept.
const DefaultConfidenceThreshold = 0.7

// Response keys the detection prompts ask the model to use.
const (
	bugsKey          = "bugs"
	optimizationsKey = "optimizations"
)

// ErrMissingKey is returned when the response object lacks the findings array.
var ErrMissingKey = errors.New("response has no findings array")

// itemStatus tags each decoded array element.
type itemStatus int

const (
	itemValid itemStatus = iota
	itemMalformed
)

// parsedItem is one element of the model's findings array after decoding.
type parsedItem[T any] struct {
	status  itemStatus
	finding T
	reason  string
}

// rawBug mirrors the bug schema in the prompt. Confidence is a pointer so a
// missing value can be told apart from an explicit 0.
type rawBug struct {
	Line        int      `json:"line"`
	Severity    string   `json:"severity"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion"`
	Confidence  *float64 `json:"confidence"`
}

type rawOptimization struct {
	Type        string `json:"type"`
	Line        *int   `json:"line"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
	Impact      string `json:"impact"`
}

// ParseResult is the outcome of decoding one model response.
type ParseResult[T any] struct {
	Findings  []T
	Malformed int
}

// ParseBugs decodes a bug detection response. The returned slice is never
// nil; err explains why it is empty when the response was unusable.
func ParseBugs(content string) (ParseResult[BugFinding], error) {
	return parseFindings(content, bugsKey, decodeBug)
}

// ParseOptimizations decodes an optimization response.
func ParseOptimizations(content string) (ParseResult[OptimizationFinding], error) {
	return parseFindings(content, optimizationsKey, decodeOptimization)
}

func parseFindings[T any](content, key string, decode func(json.RawMessage) parsedItem[T]) (ParseResult[T], error) {
	res := ParseResult[T]{Findings: []T{}}
	items, err := decodeEnvelope(content, key)
	if err != nil {
		return res, err
	}
	for _, raw := range items {
		item := decode(raw)
		switch item.status {
		case itemValid:
			res.Findings = append(res.Findings, item.finding)
		case itemMalformed:
			res.Malformed++
		}
	}
	return res, nil
}

func decodeBug(raw json.RawMessage) parsedItem[BugFinding] {
	var r rawBug
	if !isObject(raw) {
		return parsedItem[BugFinding]{status: itemMalformed, reason: "not an object"}
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return parsedItem[BugFinding]{status: itemMalformed, reason: err.Error()}
	}
	b := BugFinding{
		Line:        max(r.Line, 0),
		Severity:    NormalizeSeverity(r.Severity),
		Type:        r.Type,
		Description: r.Description,
		Suggestion:  r.Suggestion,
	}
	if r.Confidence != nil {
		b.Confidence = *r.Confidence
	}
	return parsedItem[BugFinding]{status: itemValid, finding: b}
}

func decodeOptimization(raw json.RawMessage) parsedItem[OptimizationFinding] {
	var r rawOptimization
	if !isObject(raw) {
		return parsedItem[OptimizationFinding]{status: itemMalformed, reason: "not an object"}
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return parsedItem[OptimizationFinding]{status: itemMalformed, reason: err.Error()}
	}
	o := OptimizationFinding{
		Type:        OptimizationType(strings.ToLower(strings.TrimSpace(r.Type))),
		Category:    r.Category,
		Description: r.Description,
		Suggestion:  r.Suggestion,
		Impact:      Impact(strings.ToLower(strings.TrimSpace(r.Impact))),
	}
	if r.Line != nil && *r.Line > 0 {
		line := *r.Line
		o.Line = &line
	}
	return parsedItem[OptimizationFinding]{status: itemValid, finding: o}
}

// isObject reports whether raw is a JSON object. Unmarshal accepts null
// into a struct without error, so it is rejected here.
func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// IsFindingsResponse reports whether content holds a JSON object that is not
// a model error reply. Only such responses are worth caching.
func IsFindingsResponse(content string) bool {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &envelope); err != nil || envelope == nil {
		return false
	}
	_, hasErr := envelope["error"]
	return !hasErr
}

// decodeEnvelope extracts the array stored under key from a model response.
func decodeEnvelope(content, key string) ([]json.RawMessage, error) {
	body := ExtractJSON(content)
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	raw, ok := envelope[key]
	if !ok {
		if msg, hasErr := envelope["error"]; hasErr {
			return nil, fmt.Errorf("%w: model reported error %s", ErrMissingKey, string(msg))
		}
		return nil, fmt.Errorf("%w %q", ErrMissingKey, key)
	}
	if string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%q is not an array: %w", key, err)
	}
	return items, nil
}

// ExtractJSON strips a leading <think> block and markdown code fences from a
// model response. A ```json fence wins over a bare ``` fence; text without
// fences is returned trimmed.
func ExtractJSON(content string) string {
	content = stripThinking(content)
	if _, after, ok := strings.Cut(content, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(content, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(content)
}

// stripThinking drops the <think>...</think> preamble reasoning models emit.
func stripThinking(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "<think>") {
		return content
	}
	if _, after, ok := strings.Cut(trimmed, "</think>"); ok {
		return after
	}
	return content
}

// FilterByConfidence keeps bugs whose confidence is at least threshold.
func FilterByConfidence(bugs []BugFinding, threshold float64) []BugFinding {
	kept := make([]BugFinding, 0, len(bugs))
	for _, b := range bugs {
		if b.Confidence >= threshold {
			kept = append(kept, b)
		}
	}
	return kept
}
