// File: internal/services/chunking/sentence_splitter.go
package chunking

import (
	"strings"
)

const paragraphSeparator = "\n\n\n"

type textSplit struct {
	text       string
	isSentence bool
	tokens     int
}

// SentenceSplitter packs text into chunks of at most ChunkSize tokens,
// preferring sentence boundaries and carrying ChunkOverlap tokens between
// consecutive chunks.
type SentenceSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separator    string
	Tokenizer    Tokenizer
	Segmenter    Segmenter

	splitFns    []func(string) []string
	subSplitFns []func(string) []string
}

func NewSentenceSplitter(cfg *Config, tokenizer Tokenizer, segmenter Segmenter) *SentenceSplitter {
	if tokenizer == nil {
		tokenizer = WhitespaceTokenizer{}
	}
	if segmenter == nil {
		segmenter = NewRegexSegmenter("")
	}
	sep := cfg.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	s := &SentenceSplitter{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Separator:    sep,
		Tokenizer:    tokenizer,
		Segmenter:    segmenter,
	}
	regex := NewRegexSegmenter("")
	s.splitFns = []func(string) []string{
		func(text string) []string { return splitKeepSeparator(text, paragraphSeparator) },
		segmenter.Split,
	}
	s.subSplitFns = []func(string) []string{
		func(text string) []string { return splitKeepSeparator(text, s.Separator) },
		regex.Split,
		func(text string) []string { return splitKeepSeparator(text, " ") },
		func(text string) []string { return strings.Split(text, "") },
	}
	return s
}

// SplitText returns trimmed, non-empty chunks.
func (s *SentenceSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return postprocess(s.merge(s.split(text)))
}

func (s *SentenceSplitter) split(text string) []textSplit {
	size := s.Tokenizer.Count(text)
	if size <= s.ChunkSize {
		return []textSplit{{text: text, isSentence: true, tokens: size}}
	}

	parts, isSentence := s.splitsByFns(text)
	var out []textSplit
	for _, part := range parts {
		size := s.Tokenizer.Count(part)
		if size <= s.ChunkSize {
			out = append(out, textSplit{text: part, isSentence: isSentence, tokens: size})
			continue
		}
		if part == text {
			// cannot be split further; take it whole
			out = append(out, textSplit{text: part, isSentence: isSentence, tokens: size})
			continue
		}
		out = append(out, s.split(part)...)
	}
	return out
}

func (s *SentenceSplitter) splitsByFns(text string) ([]string, bool) {
	for _, fn := range s.splitFns {
		if parts := fn(text); len(parts) > 1 {
			return parts, true
		}
	}
	var parts []string
	for _, fn := range s.subSplitFns {
		parts = fn(text)
		if len(parts) > 1 {
			break
		}
	}
	return parts, false
}

func (s *SentenceSplitter) merge(splits []textSplit) []string {
	var chunks []string
	var cur, last []textSplit
	curLen := 0
	newChunk := true

	closeChunk := func() {
		chunks = append(chunks, joinSplits(cur))
		last = cur
		cur = nil
		curLen = 0
		newChunk = true

		for i := len(last) - 1; i >= 0; i-- {
			if curLen+last[i].tokens > s.ChunkOverlap {
				break
			}
			curLen += last[i].tokens
			cur = append([]textSplit{last[i]}, cur...)
		}
	}

	for i := 0; i < len(splits); {
		split := splits[i]
		if curLen+split.tokens > s.ChunkSize && !newChunk {
			closeChunk()
			continue
		}
		if split.isSentence || curLen+split.tokens <= s.ChunkSize || newChunk {
			curLen += split.tokens
			cur = append(cur, split)
			newChunk = false
			i++
			continue
		}
		closeChunk()
	}

	if !newChunk {
		chunks = append(chunks, joinSplits(cur))
	}
	return chunks
}

func joinSplits(splits []textSplit) string {
	var b strings.Builder
	for _, sp := range splits {
		b.WriteString(sp.text)
	}
	return b.String()
}

func postprocess(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
