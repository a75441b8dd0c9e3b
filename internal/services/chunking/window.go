package chunking

import "strings"

// WindowSplitter emits one node per sentence, each carrying the surrounding
// WindowSize sentences on both sides as metadata for retrieval-time context.
type WindowSplitter struct {
	windowSize int
	segmenter  Segmenter
	splitter   *SentenceSplitter
}

func NewWindowSplitter(windowSize int, segmenter Segmenter, splitter *SentenceSplitter) *WindowSplitter {
	if windowSize < 0 {
		windowSize = DefaultWindowSize
	}
	return &WindowSplitter{windowSize: windowSize, segmenter: segmenter, splitter: splitter}
}

// Sentences segments text; sentences over the token budget are broken down by
// the sentence splitter.
func (w *WindowSplitter) Sentences(text string) []string {
	var out []string
	for _, raw := range w.segmenter.Split(text) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}
		if w.splitter != nil && w.splitter.Tokenizer.Count(sentence) > w.splitter.ChunkSize {
			out = append(out, w.splitter.SplitText(sentence)...)
			continue
		}
		out = append(out, sentence)
	}
	return out
}

func (w *WindowSplitter) Split(text string, metadata map[string]interface{}) []Node {
	sentences := w.Sentences(text)
	nodes := make([]Node, 0, len(sentences))
	for i, sentence := range sentences {
		start := i - w.windowSize
		if start < 0 {
			start = 0
		}
		end := i + w.windowSize + 1
		if end > len(sentences) {
			end = len(sentences)
		}

		node := newNode(sentence, metadata)
		node.Metadata[WindowMetadataKey] = strings.Join(sentences[start:end], " ")
		node.Metadata[OriginalTextMetadataKey] = sentence
		nodes = append(nodes, node)
	}
	linkNodes(nodes)
	return nodes
}
