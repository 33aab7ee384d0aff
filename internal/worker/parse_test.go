package worker

import (
	"testing"
)

func TestParseDirectiveToolCall(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"raw object", `{"tool": "calculator", "arguments": {"expression": "2+2"}}`},
		{"json fence", "```json\n{\"tool\": \"calculator\", \"arguments\": {\"expression\": \"2+2\"}}\n```"},
		{"bare fence", "```\n{\"tool\": \"calculator\", \"arguments\": {\"expression\": \"2+2\"}}\n```"},
		{"prose wrapped", `I'll compute that. {"tool": "calculator", "arguments": {"expression": "2+2"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseDirective(tt.reply)
			if !d.isToolCall() {
				t.Fatalf("parseDirective(%q) not recognized as tool call", tt.reply)
			}
			if d.Tool != "calculator" {
				t.Errorf("Tool = %q, want calculator", d.Tool)
			}
			if d.Arguments["expression"] != "2+2" {
				t.Errorf("Arguments = %v, want expression 2+2", d.Arguments)
			}
		})
	}
}

func TestParseDirectiveAnswer(t *testing.T) {
	d := parseDirective(`{"findings": "done", "details": "full detail", "confidence": 0.8}`)
	if d.isToolCall() {
		t.Fatal("answer reply recognized as tool call")
	}
	findings, details, confidence := d.answer("ignored raw")
	if findings != "done" || details != "full detail" || confidence != 0.8 {
		t.Errorf("answer() = (%q, %q, %v), want (done, full detail, 0.8)", findings, details, confidence)
	}
}

func TestParseDirectiveAnswerWithoutConfidence(t *testing.T) {
	d := parseDirective(`{"findings": "done"}`)
	_, _, confidence := d.answer("raw")
	if confidence != 0.5 {
		t.Errorf("confidence = %v, want default 0.5", confidence)
	}
}

func TestParseDirectiveBareText(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain prose", "The answer is four."},
		{"broken json", `{"tool": "calculator", "arguments":`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseDirective(tt.reply)
			if d.isToolCall() {
				t.Fatalf("parseDirective(%q) should not be a tool call", tt.reply)
			}
			findings, _, confidence := d.answer(tt.reply)
			if findings != tt.reply && tt.reply != "" {
				t.Errorf("answer findings = %q, want raw reply", findings)
			}
			if confidence != 0.5 {
				t.Errorf("confidence = %v, want 0.5", confidence)
			}
		})
	}
}
