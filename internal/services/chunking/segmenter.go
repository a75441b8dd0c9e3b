package chunking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter breaks text into sentences.
type Segmenter interface {
	Split(text string) []string
}

// PunktSegmenter uses the neurosnap/sentences punkt model.
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewPunktSegmenter() (*PunktSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentence model: %w", err)
	}
	return &PunktSegmenter{tokenizer: tokenizer}, nil
}

func (s *PunktSegmenter) Split(text string) []string {
	tokens := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Text)
	}
	return out
}

const defaultSentenceRegex = `[^,.;。？！?!]+[,.;。？！?!]?|[,.;。？！?!]`

// RegexSegmenter splits on punctuation. Used when no model is available and
// as the sub-sentence fallback.
type RegexSegmenter struct {
	re *regexp.Regexp
}

func NewRegexSegmenter(pattern string) *RegexSegmenter {
	if pattern == "" {
		pattern = defaultSentenceRegex
	}
	return &RegexSegmenter{re: regexp.MustCompile(pattern)}
}

func (s *RegexSegmenter) Split(text string) []string {
	return s.re.FindAllString(text, -1)
}

// splitKeepSeparator splits on sep and keeps sep at the start of every part
// but the first.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		if text == "" {
			return nil
		}
		return []string{text}
	}
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
