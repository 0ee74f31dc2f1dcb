package triage

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mikey/llm-email-triage/internal/core"
)

var codeFenceRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

var titleCaser = cases.Title(language.English)

// urgencyResponse is the structured shape the analyzer asks the model for.
type urgencyResponse struct {
	IsUrgent bool   `json:"is_urgent"`
	Reason   string `json:"reason"`
}

// ParseUrgencyResponse coerces model output into an UrgencyFinding.
// Ambiguity is resolved conservatively: anything that cannot be parsed
// into the expected yes/no shape becomes not-urgent, with the raw text
// kept as the reason.
func ParseUrgencyResponse(content string) core.UrgencyFinding {
	if jsonStr := extractJSONObject(content); jsonStr != "" {
		var resp urgencyResponse
		if err := json.Unmarshal([]byte(jsonStr), &resp); err == nil {
			return core.UrgencyFinding{IsUrgent: resp.IsUrgent, Reason: resp.Reason}
		}
	}

	// Some models answer with a bare yes/no despite the instructions.
	switch firstWord(content) {
	case "yes", "urgent", "true":
		return core.UrgencyFinding{IsUrgent: true, Reason: strings.TrimSpace(content)}
	case "no", "false":
		return core.UrgencyFinding{IsUrgent: false, Reason: strings.TrimSpace(content)}
	}

	return core.UrgencyFinding{IsUrgent: false, Reason: strings.TrimSpace(content)}
}

// CanonicalCategory coerces model output to a member of the closed
// category set. An exact case/whitespace-insensitive match is attempted
// first; failing that, the earliest canonical label mentioned anywhere in
// the reply wins; failing that, the result is Other.
func CanonicalCategory(content string) core.Category {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.Trim(cleaned, "`\"'.,:; \t\r\n")

	if c := core.Category(titleCaser.String(strings.ToLower(cleaned))); c.IsValid() {
		return c
	}

	lowered := strings.ToLower(content)
	best := core.CategoryOther
	bestIdx := -1
	for _, c := range core.Categories() {
		idx := strings.Index(lowered, strings.ToLower(string(c)))
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best = c
			bestIdx = idx
		}
	}
	return best
}

// extractJSONObject pulls the first JSON object out of model output,
// tolerating code fences and surrounding prose.
func extractJSONObject(content string) string {
	if matches := codeFenceRegex.FindStringSubmatch(content); len(matches) > 1 {
		trimmed := strings.TrimSpace(matches[1])
		if strings.HasPrefix(trimmed, "{") {
			content = trimmed
		}
	}

	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}

func firstWord(content string) string {
	fields := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == ',' || r == '.' || r == '!' || r == ':'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
