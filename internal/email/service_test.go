package email

import (
	"strings"
	"testing"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing port",
			config: Config{
				Host: "smtp.example.com",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "test@example.com",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

func TestSendUnconfiguredFails(t *testing.T) {
	svc := NewService(Config{})
	err := svc.SendHTMLEmail([]string{"mod@example.com"}, "subject", "<p>body</p>")
	if err == nil {
		t.Fatal("expected error when email is not configured")
	}
}

func TestSuggestionTemplateRenders(t *testing.T) {
	html, err := renderTemplate(suggestionEmailTemplate, SuggestionData{
		AppName:        "Granthalaya",
		SuggestionType: "correction",
		GranthaTitle:   "Bhagavad Gita",
		VerseRef:       "2.47",
		SubmittedBy:    "Anonymous",
		SuggestedText:  "कर्मण्येवाधिकारस्ते",
		Reason:         "typo in verse text",
	})
	if err != nil {
		t.Fatalf("renderTemplate() error = %v", err)
	}
	for _, want := range []string{"Bhagavad Gita", "2.47", "कर्मण्येवाधिकारस्ते", "typo in verse text"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}
