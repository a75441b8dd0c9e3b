package chunking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/iyunix/go-meddy/internal/services/ai/fake"
	"github.com/stretchr/testify/suite"
)

type ChunkingTestSuite struct {
	suite.Suite
	llm     *fake.Provider
	chunker *Chunker
}

func TestChunkingTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkingTestSuite))
}

func (s *ChunkingTestSuite) SetupTest() {
	s.llm = &fake.Provider{}
	chunker, err := NewChunker(DefaultConfig(), WhitespaceTokenizer{}, NewRegexSegmenter(""), s.llm, nil)
	s.Require().NoError(err)
	s.chunker = chunker
}

func vietnameseSentences(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("Đây là câu số %d về triệu chứng sốt cao kéo dài.", i)
	}
	return strings.Join(parts, " ")
}

func (s *ChunkingTestSuite) TestStrategyThresholds() {
	s.Equal(StrategySingle, s.chunker.StrategyFor(strings.Repeat("a", 511)))
	s.Equal(StrategyWindow, s.chunker.StrategyFor(strings.Repeat("a", 512)))
	s.Equal(StrategyWindow, s.chunker.StrategyFor(strings.Repeat("a", 2047)))
	s.Equal(StrategyLLM, s.chunker.StrategyFor(strings.Repeat("a", 2048)))
	// runes, not bytes
	s.Equal(StrategySingle, s.chunker.StrategyFor(strings.Repeat("ệ", 500)))
}

func (s *ChunkingTestSuite) TestSingleNodeKeepsMetadata() {
	meta := map[string]interface{}{"doc_id": "7", "title": "Cúm"}
	nodes, err := s.chunker.DynamicChunk(context.Background(), "Cúm là bệnh hô hấp.", meta)
	s.Require().NoError(err)
	s.Require().Len(nodes, 1)
	s.Equal("Cúm là bệnh hô hấp.", nodes[0].Text)
	s.Equal("7", nodes[0].Metadata["doc_id"])
	s.NotEmpty(nodes[0].ID)
	s.Empty(s.llm.Calls)

	nodes[0].Metadata["doc_id"] = "changed"
	s.Equal("7", meta["doc_id"], "caller metadata is not aliased")
}

func (s *ChunkingTestSuite) TestWindowNodes() {
	text := vietnameseSentences(12)
	s.Require().Equal(StrategyWindow, s.chunker.StrategyFor(text))

	nodes, err := s.chunker.DynamicChunk(context.Background(), text, map[string]interface{}{"doc_id": "1"})
	s.Require().NoError(err)
	s.Require().Len(nodes, 12)

	first := nodes[0]
	s.Equal(first.Text, first.Metadata[OriginalTextMetadataKey])
	s.Equal("1", first.Metadata["doc_id"])
	window := first.Metadata[WindowMetadataKey].(string)
	s.True(strings.HasPrefix(window, first.Text))
	s.Contains(window, "câu số 3 ")
	s.NotContains(window, "câu số 4 ")

	middle := nodes[6].Metadata[WindowMetadataKey].(string)
	s.Contains(middle, "câu số 3 ")
	s.Contains(middle, "câu số 9 ")
	s.NotContains(middle, "câu số 2 ")
	s.NotContains(middle, "câu số 10 ")

	s.Empty(first.PrevID)
	s.Equal(nodes[1].ID, first.NextID)
	s.Equal(nodes[10].ID, nodes[11].PrevID)
	s.Empty(s.llm.Calls)
}

func (s *ChunkingTestSuite) TestLLMChunking() {
	s.llm.Completions = []string{"```json\n[\"phần một\", \"phần hai\", \"  \"]\n```"}
	text := strings.Repeat("x", 2048)

	nodes, err := s.chunker.DynamicChunk(context.Background(), text, map[string]interface{}{"source": "test"})
	s.Require().NoError(err)
	s.Require().Len(nodes, 2)
	s.Equal("phần một", nodes[0].Text)
	s.Equal("test", nodes[1].Metadata["source"])
	s.Equal(nodes[1].ID, nodes[0].NextID)

	calls := s.llm.CallsOf("complete")
	s.Require().Len(calls, 1)
	s.Require().NotNil(calls[0].Options.Temperature)
	s.InDelta(0.1, *calls[0].Options.Temperature, 1e-6)
	s.Equal(2048, calls[0].Options.MaxTokens)
	s.Contains(calls[0].Messages[1].Content, "## Input text ##: "+text)
}

func (s *ChunkingTestSuite) TestLLMChunkingRejectsNonList() {
	s.llm.Completions = []string{`{"chunks": ["a"]}`}
	_, err := s.chunker.DynamicChunk(context.Background(), strings.Repeat("x", 4096), nil)
	s.Error(err)
}

func (s *ChunkingTestSuite) TestLLMChunkingPropagatesErrors() {
	s.llm.CompleteErr = errors.New("upstream down")
	_, err := s.chunker.DynamicChunk(context.Background(), strings.Repeat("x", 4096), nil)
	s.ErrorContains(err, "upstream down")
}

func (s *ChunkingTestSuite) TestParseChunkList() {
	out, err := parseChunkList(`["a","b"]`)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, out)

	_, err = parseChunkList("not json")
	s.Error(err)
	_, err = parseChunkList(`[1, 2]`)
	s.Error(err)
}

func (s *ChunkingTestSuite) TestSentenceSplitterRespectsBudget() {
	cfg := &Config{ChunkSize: 10, ChunkOverlap: 3, Separator: ". "}
	splitter := NewSentenceSplitter(cfg, WhitespaceTokenizer{}, NewRegexSegmenter(""))

	text := "một hai ba bốn năm. sáu bảy tám chín mười. mười một mười hai mười ba. mười bốn mười lăm."
	chunks := splitter.SplitText(text)
	s.Require().NotEmpty(chunks)
	for _, c := range chunks {
		s.LessOrEqual(WhitespaceTokenizer{}.Count(c), 10, c)
	}
	s.Contains(chunks[0], "một")
	s.Contains(chunks[len(chunks)-1], "mười lăm")
}

func (s *ChunkingTestSuite) TestSentenceSplitterShortText() {
	splitter := NewSentenceSplitter(DefaultConfig(), nil, nil)
	s.Equal([]string{"ngắn gọn."}, splitter.SplitText("  ngắn gọn.  "))
	s.Nil(splitter.SplitText("   "))
}

func (s *ChunkingTestSuite) TestLongSentenceIsSplitInsideWindow() {
	cfg := &Config{ChunkSize: 5, ChunkOverlap: 1, WindowSize: 1, Separator: ". "}
	splitter := NewSentenceSplitter(cfg, WhitespaceTokenizer{}, NewRegexSegmenter(""))
	w := NewWindowSplitter(cfg.WindowSize, NewRegexSegmenter(""), splitter)

	got := w.Sentences("a b c d e f g h i j k l. ngắn.")
	s.Greater(len(got), 2)
	for _, sentence := range got {
		s.LessOrEqual(WhitespaceTokenizer{}.Count(sentence), 5)
	}
}

func (s *ChunkingTestSuite) TestPunktSegmenter() {
	seg, err := NewPunktSegmenter()
	s.Require().NoError(err)
	got := seg.Split("Sốt cao là triệu chứng thường gặp. Cần đi khám bác sĩ. Uống nhiều nước.")
	s.Len(got, 3)
}

func (s *ChunkingTestSuite) TestConfigValidate() {
	s.NoError(DefaultConfig().Validate())
	s.Error((&Config{ChunkSize: 0}).Validate())
	s.Error((&Config{ChunkSize: 10, ChunkOverlap: 10}).Validate())
	s.Error((&Config{ChunkSize: 10, WindowSize: -1}).Validate())
}
