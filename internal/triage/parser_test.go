package triage

import (
	"testing"

	"github.com/mikey/llm-email-triage/internal/core"
)

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    core.Category
	}{
		{name: "exact label", content: "Work", want: core.CategoryWork},
		{name: "lowercase", content: "personal", want: core.CategoryPersonal},
		{name: "uppercase", content: "SPAM", want: core.CategorySpam},
		{name: "surrounding whitespace", content: "  Work \n", want: core.CategoryWork},
		{name: "trailing punctuation", content: "Spam.", want: core.CategorySpam},
		{name: "code fence ticks", content: "`Personal`", want: core.CategoryPersonal},
		{name: "quoted label", content: "\"Other\"", want: core.CategoryOther},
		{name: "label buried in prose", content: "The category is: Work", want: core.CategoryWork},
		{name: "earliest label wins", content: "I'd file this under personal, though it could be work.", want: core.CategoryPersonal},
		{name: "unknown label", content: "Promotions", want: core.CategoryOther},
		{name: "nonsense", content: "I am unable to classify this email.", want: core.CategoryOther},
		{name: "empty response", content: "", want: core.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalCategory(tt.content); got != tt.want {
				t.Errorf("CanonicalCategory(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestParseUrgencyResponse(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantUrgent bool
		wantReason string
	}{
		{
			name:       "clean json",
			content:    `{"is_urgent": true, "reason": "hard deadline tomorrow"}`,
			wantUrgent: true,
			wantReason: "hard deadline tomorrow",
		},
		{
			name:       "fenced json",
			content:    "```json\n{\"is_urgent\": false, \"reason\": \"weekly newsletter\"}\n```",
			wantUrgent: false,
			wantReason: "weekly newsletter",
		},
		{
			name:       "json wrapped in prose",
			content:    `Sure! {"is_urgent": true, "reason": "asap request"} Hope that helps.`,
			wantUrgent: true,
			wantReason: "asap request",
		},
		{
			name:       "bare yes",
			content:    "Yes, this one needs attention now.",
			wantUrgent: true,
			wantReason: "Yes, this one needs attention now.",
		},
		{
			name:       "bare no",
			content:    "No.",
			wantUrgent: false,
			wantReason: "No.",
		},
		{
			name:       "unparseable defaults to not urgent",
			content:    "I cannot determine the urgency of this email.",
			wantUrgent: false,
			wantReason: "I cannot determine the urgency of this email.",
		},
		{
			name:       "malformed json defaults to not urgent",
			content:    "{is_urgent: maybe}",
			wantUrgent: false,
			wantReason: "{is_urgent: maybe}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finding := ParseUrgencyResponse(tt.content)
			if finding.IsUrgent != tt.wantUrgent {
				t.Errorf("IsUrgent = %v, want %v", finding.IsUrgent, tt.wantUrgent)
			}
			if finding.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", finding.Reason, tt.wantReason)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "bare object", content: `{"a": 1}`, want: `{"a": 1}`},
		{name: "nested object", content: `{"a": {"b": 1}}`, want: `{"a": {"b": 1}}`},
		{name: "object in prose", content: `the answer is {"a": 1}, roughly`, want: `{"a": 1}`},
		{name: "no object", content: "plain text", want: ""},
		{name: "unbalanced braces", content: `{"a": 1`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.content); got != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
