package assist

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Budget bounds how much history reaches the prompt. A zero limit disables
// that dimension. When any limit is exceeded the oldest turns are dropped
// first; the new message itself is never dropped.
type Budget struct {
	MaxTurns  int
	MaxChars  int
	MaxTokens int
}

// TokenCounter counts model tokens in a piece of text.
type TokenCounter interface {
	Count(text string) int
}

// Apply returns the newest suffix of history that fits the budget. The token
// limit is only enforced when counter is non-nil.
func (b Budget) Apply(history []Turn, counter TokenCounter) []Turn {
	if b.MaxTurns <= 0 && b.MaxChars <= 0 && (b.MaxTokens <= 0 || counter == nil) {
		return history
	}

	var chars, tokens int
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		kept := len(history) - i
		if b.MaxTurns > 0 && kept > b.MaxTurns {
			break
		}
		c := utf8.RuneCountInString(history[i].Content)
		if b.MaxChars > 0 && chars+c > b.MaxChars {
			break
		}
		var tk int
		if b.MaxTokens > 0 && counter != nil {
			tk = counter.Count(formatHistory(history[i : i+1]))
			if tokens+tk > b.MaxTokens {
				break
			}
		}
		chars += c
		tokens += tk
		start = i
	}
	return history[start:]
}

// tiktokenCounter counts tokens with an OpenAI BPE encoding.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter returns a TokenCounter for model. Models tiktoken does not
// know, including non-OpenAI ones, are approximated with cl100k_base.
func NewTokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("loading token encoding: %w", err)
		}
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
