package privacy

import (
	"testing"
)

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile([]string{`[invalid`})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestCompile_Empty(t *testing.T) {
	patterns, err := Compile(nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("got %d patterns, want 0", len(patterns))
	}
}

func TestApply_MultiplePatterns(t *testing.T) {
	patterns, _ := Compile([]string{`(?i)инсайдер\p{L}*`, `(?i)source:\s*\w+`})
	result := Apply("По словам инсайдера, source: Ivan", patterns)
	want := "По словам [REDACTED], [REDACTED]"
	if result != want {
		t.Errorf("got %q, want %q", result, want)
	}
}

func TestRedactor_Defaults(t *testing.T) {
	r, err := NewRedactor(DefaultPatterns)
	if err != nil {
		t.Fatalf("new redactor: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"email", "Пишите на press@lenta.example.ru сегодня", "Пишите на [REDACTED] сегодня"},
		{"phone", "Горячая линия +7 (495) 123-45-67.", "Горячая линия [REDACTED]."},
		{"year untouched", "Итоги 2024 года", "Итоги 2024 года"},
		{"short number untouched", "Рост на 12.5%", "Рост на 12.5%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Redact(tt.input); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_Nil(t *testing.T) {
	var r *Redactor
	if got := r.Redact("a@b.cd"); got != "a@b.cd" {
		t.Errorf("nil redactor changed text: %q", got)
	}
}

func TestNewRedactor_Invalid(t *testing.T) {
	if _, err := NewRedactor([]string{`(`}); err == nil {
		t.Fatal("expected error")
	}
}
