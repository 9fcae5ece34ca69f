package generator

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestFirstText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			"nil content skipped",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"items":[]}`)}}},
			}},
			`{"items":[]}`,
		},
		{
			"non-text parts skipped",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Blob{MIMEType: "image/png", Data: []byte{1}},
					genai.Text("first"),
					genai.Text("second"),
				}}},
			}},
			"first",
		},
		{
			"no text anywhere",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}},
			}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstText(tt.resp); got != tt.want {
				t.Errorf("firstText() = %q, want %q", got, tt.want)
			}
		})
	}
}
