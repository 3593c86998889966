package llm

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"confidence": 0.9}`,
			want: `{"confidence": 0.9}`,
		},
		{
			name: "tagged fence",
			text: "Here is my answer:\n```json\n{\"confidence\": 0.9}\n```\nHope that helps!",
			want: `{"confidence": 0.9}`,
		},
		{
			name: "untagged fence",
			text: "```\n{\"confidence\": 0.9}\n```",
			want: `{"confidence": 0.9}`,
		},
		{
			name: "embedded in prose",
			text: `Based on the code, {"confidence": 0.9} is my verdict.`,
			want: `{"confidence": 0.9}`,
		},
		{
			name: "fence wins over prose brackets",
			text: "The map {a: b} looked odd.\n```json\n{\"confidence\": 0.9}\n```",
			want: `{"confidence": 0.9}`,
		},
		{
			name: "non-object fence falls back to bracket span",
			text: "```\nnot json\n```\ntrailing {\"confidence\": 0.9}",
			want: `{"confidence": 0.9}`,
		},
		{
			name: "no json at all",
			text: "not json at all",
			want: "",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.text); got != tt.want {
				t.Errorf("ExtractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare array",
			text: `[{"repo": "a", "confidence": 0.9}]`,
			want: `[{"repo": "a", "confidence": 0.9}]`,
		},
		{
			name: "fenced array matches bare array",
			text: "```json\n[{\"repo\": \"a\", \"confidence\": 0.9}]\n```",
			want: `[{"repo": "a", "confidence": 0.9}]`,
		},
		{
			name: "array embedded in prose",
			text: `I ranked them: [{"repo": "a", "confidence": 0.9}] as requested.`,
			want: `[{"repo": "a", "confidence": 0.9}]`,
		},
		{
			name: "object is not an array",
			text: `{"repo": "a"}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONArray(tt.text); got != tt.want {
				t.Errorf("ExtractJSONArray() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapResultEnvelope(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "unwraps result envelope",
			raw:  `{"result": "[{\"repo\": \"a\"}]"}`,
			want: `[{"repo": "a"}]`,
		},
		{
			name: "non-envelope passes through",
			raw:  `[{"repo": "a"}]`,
			want: `[{"repo": "a"}]`,
		},
		{
			name: "object without result passes through",
			raw:  `{"other": "field"}`,
			want: `{"other": "field"}`,
		},
		{
			name: "malformed input passes through",
			raw:  `not json`,
			want: `not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapResultEnvelope(tt.raw); got != tt.want {
				t.Errorf("unwrapResultEnvelope() = %q, want %q", got, tt.want)
			}
		})
	}
}
