package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		model    string
		expected Provider
	}{
		{"gpt-4o", ProviderOpenAI},
		{"OpenAI/text-embedding-3", ProviderOpenAI},
		{"Claude-3-Opus", ProviderAnthropic},
		{"gemini-1.5-pro", ProviderGoogle},
		{"llama3:8b", ProviderOllama},
		{"deepseek-coder", ProviderOllama},
		{"nati-coder", ProviderNati},
		{"Nati/fast", ProviderNati},
		{"gpt-4o-alternative", ProviderOpenAI},
		{"claude-international", ProviderAnthropic},
		{"gemini-combination", ProviderGoogle},
		{"alternative-model", ProviderOther},
		{"natural-7b", ProviderOther},
		{"some-custom-model", ProviderOther},
		{"", ProviderOther},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.model))
		})
	}
}

func TestProviderDisplay(t *testing.T) {
	assert.Equal(t, "/logos/anthropic.svg", ProviderAnthropic.Display().Logo)
	assert.Equal(t, ProviderOther.Display(), Provider("unknown").Display())
}
