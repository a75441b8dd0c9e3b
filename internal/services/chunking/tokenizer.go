package chunking

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens for the sentence splitter budget.
type Tokenizer interface {
	Count(text string) int
}

// WhitespaceTokenizer counts whitespace separated words.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

// TiktokenTokenizer counts BPE tokens with an OpenAI encoding.
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenTokenizer loads the named encoding, cl100k_base when empty.
// tiktoken-go fetches the BPE ranks on first use unless they are cached.
func NewTiktokenTokenizer(encodingName string) (*TiktokenTokenizer, error) {
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encodingName, err)
	}
	return &TiktokenTokenizer{encoding: enc}, nil
}

func (t *TiktokenTokenizer) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}
