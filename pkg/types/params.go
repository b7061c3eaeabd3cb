package types

import "fmt"

// GenerationParameters is the full sampling parameter set for one generation
// request. It is a plain value; Validate before building a request and treat it
// as immutable afterwards.
type GenerationParameters struct {
	// Prompt text to generate a continuation for.
	Prompt string `json:"prompt"`
	// Maximum number of new tokens to generate. Must be > 0.
	MaxTokens int `json:"max_tokens"`
	// Sampling temperature (higher = more random).
	Temperature float32 `json:"temperature"`
	// Nucleus sampling probability. Must be >= 0.
	TopP float32 `json:"top_p"`
	// Top-K sampling: limit candidates to top K tokens. Must be >= 0.
	TopK int `json:"top_k"`
	// Beam search width. Must be >= 1.
	BeamWidth int `json:"beam_width"`
	// Penalty applied to tokens already generated.
	RepetitionPenalty float32 `json:"repetition_penalty"`
	// Penalty applied to longer sequences.
	LengthPenalty float32 `json:"length_penalty"`
	// Random seed for reproducible sampling.
	Seed uint64 `json:"random_seed"`
	// Stream toggles incremental token delivery on the server.
	Stream bool `json:"stream"`
	// StopWords end generation when a decoded fragment matches exactly.
	StopWords []string `json:"stop_words,omitempty"`
}

// DefaultParameters returns the server-conventional defaults.
func DefaultParameters() GenerationParameters {
	return GenerationParameters{
		MaxTokens:         100,
		Temperature:       1.0,
		TopP:              0,
		TopK:              1,
		BeamWidth:         1,
		RepetitionPenalty: 1.0,
		LengthPenalty:     1.0,
		Seed:              42,
		StopWords:         []string{"</s>"},
	}
}

// WithPrompt returns a copy of p with the prompt set.
func (p GenerationParameters) WithPrompt(prompt string) GenerationParameters {
	p.Prompt = prompt
	return p
}

// Validate checks the parameter invariants.
func (p GenerationParameters) Validate() error {
	if p.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0, got %d", p.MaxTokens)
	}
	if p.TopP < 0 {
		return fmt.Errorf("top_p must be >= 0, got %v", p.TopP)
	}
	if p.TopK < 0 {
		return fmt.Errorf("top_k must be >= 0, got %d", p.TopK)
	}
	if p.BeamWidth < 1 {
		return fmt.Errorf("beam_width must be >= 1, got %d", p.BeamWidth)
	}
	return nil
}
