package usage

import (
	"slices"
	"strings"
	"unicode"
)

// Provider is a coarse vendor bucket inferred from a model name.
type Provider string

const (
	ProviderOpenAI    Provider = "OpenAI"
	ProviderAnthropic Provider = "Anthropic"
	ProviderGoogle    Provider = "Google"
	ProviderOllama    Provider = "Ollama"
	ProviderNati      Provider = "Nati"
	ProviderOther     Provider = "Other"
)

type providerRule struct {
	keyword  string
	provider Provider
	// segment requires keyword to be a whole dash/colon/slash separated part
	// of the name rather than any substring.
	segment bool
}

// Evaluated top to bottom, first match wins.
var providerRules = []providerRule{
	{keyword: "gpt", provider: ProviderOpenAI},
	{keyword: "openai", provider: ProviderOpenAI},
	{keyword: "davinci", provider: ProviderOpenAI},
	{keyword: "claude", provider: ProviderAnthropic},
	{keyword: "anthropic", provider: ProviderAnthropic},
	{keyword: "gemini", provider: ProviderGoogle},
	{keyword: "google", provider: ProviderGoogle},
	{keyword: "palm", provider: ProviderGoogle},
	{keyword: "bison", provider: ProviderGoogle},
	{keyword: "ollama", provider: ProviderOllama},
	{keyword: "llama", provider: ProviderOllama},
	{keyword: "mistral", provider: ProviderOllama},
	{keyword: "mixtral", provider: ProviderOllama},
	{keyword: "qwen", provider: ProviderOllama},
	{keyword: "deepseek", provider: ProviderOllama},
	{keyword: "nati", provider: ProviderNati, segment: true},
}

// Classify maps a free-text model name to a provider bucket. Unknown names
// fall into ProviderOther.
func Classify(model string) Provider {
	name := strings.ToLower(model)
	var segments []string
	for _, r := range providerRules {
		if !r.segment {
			if strings.Contains(name, r.keyword) {
				return r.provider
			}
			continue
		}
		if segments == nil {
			segments = strings.FieldsFunc(name, isNameSeparator)
		}
		if slices.Contains(segments, r.keyword) {
			return r.provider
		}
	}
	return ProviderOther
}

func isNameSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Display holds the chart decoration for a provider.
type Display struct {
	Color    string `json:"color"`
	Gradient string `json:"gradient"`
	Logo     string `json:"logo"`
}

var providerDisplay = map[Provider]Display{
	ProviderOpenAI:    {Color: "#10a37f", Gradient: "from-emerald-500 to-teal-600", Logo: "/logos/openai.svg"},
	ProviderAnthropic: {Color: "#d97757", Gradient: "from-orange-400 to-amber-600", Logo: "/logos/anthropic.svg"},
	ProviderGoogle:    {Color: "#4285f4", Gradient: "from-blue-500 to-indigo-600", Logo: "/logos/google.svg"},
	ProviderOllama:    {Color: "#6b7280", Gradient: "from-gray-500 to-slate-700", Logo: "/logos/ollama.svg"},
	ProviderNati:      {Color: "#8b5cf6", Gradient: "from-violet-500 to-purple-600", Logo: "/logos/nati.svg"},
	ProviderOther:     {Color: "#94a3b8", Gradient: "from-slate-400 to-slate-600", Logo: "/logos/generic.svg"},
}

func (p Provider) Display() Display {
	if d, ok := providerDisplay[p]; ok {
		return d
	}
	return providerDisplay[ProviderOther]
}
