package chunker

import "strings"

// Tokenizer counts embedding tokens for budgeting. Counting must be cheap:
// it runs on every accumulation step.
type Tokenizer interface {
	// Count returns the token count of text. Empty text counts as zero.
	Count(text string) int
	// Model names the tokenizer for diagnostics.
	Model() string
}

// Named tokenizer models. Unknown models resolve to the heuristic so a
// misconfigured model id degrades fidelity instead of erroring.
const (
	ModelHeuristic    = "heuristic"
	ModelWordEstimate = "word-estimate"
)

// ResolveTokenizer selects the tokenizer for a model id, once at config
// time. The fallback is the character heuristic (len/4), which is lower
// fidelity than a real subword tokenizer but never fails.
func ResolveTokenizer(model string) Tokenizer {
	switch model {
	case ModelWordEstimate:
		return wordEstimateTokenizer{}
	default:
		return heuristicTokenizer{}
	}
}

// heuristicTokenizer approximates subword tokens as one token per four
// characters.
type heuristicTokenizer struct{}

func (heuristicTokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

func (heuristicTokenizer) Model() string { return ModelHeuristic }

// wordEstimateTokenizer approximates roughly 1.33 tokens per word, which
// tracks English prose better than raw character division.
type wordEstimateTokenizer struct{}

func (wordEstimateTokenizer) Count(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	n := int(float64(words) * 1.33)
	if n < 1 {
		return 1
	}
	return n
}

func (wordEstimateTokenizer) Model() string { return ModelWordEstimate }
