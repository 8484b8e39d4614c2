package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ModelSelection(t *testing.T) {
	tests := []struct {
		model        string
		wantEncoding string
		wantMax      int
	}{
		{"gpt-4o-mini", "o200k_base", 128000},
		{"gpt-4", "cl100k_base", 8192},
		// Prefix fallback picks the longest match, so dated variants
		// stay on their family's encoding.
		{"gpt-4o-2024-08-06", "o200k_base", 128000},
		{"gpt-4.1-mini", "o200k_base", 128000},
		{"gpt-4-0613", "cl100k_base", 8192},
		{"gpt-3.5-turbo-0125", "cl100k_base", 16385},
		{"totally-unknown-model", "cl100k_base", 8192},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			tok := New(tt.model)
			assert.Equal(t, tt.wantEncoding, tok.Encoding())
			assert.Equal(t, tt.wantMax, tok.MaxTokens())
		})
	}
}
