// File: internal/loader/reader.go
package loader

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Dataset sources recorded in the point payloads.
const (
	DiseaseSource = "PB3002/ViMedical_Disease"
	ArticleSource = "medical_vietnamese_datasets"

	DocTypeDisease = "disease_info"
	DocTypeArticle = "medical_article"

	minArticleAnswerLength = 50
)

// Record is one dataset row ready for chunking.
type Record struct {
	Index    int
	Text     string
	Metadata map[string]interface{}
}

// Skip describes a row that was left out and why.
type Skip struct {
	Index  int
	Reason string
}

// rowFunc turns one decoded row into a record, or reports why it was skipped.
type rowFunc func(index int, row map[string]interface{}) (Record, string)

// ReadDiseases parses the disease Q&A dataset (Disease, Question per line).
// limit <= 0 reads everything.
func ReadDiseases(r io.Reader, limit int) ([]Record, []Skip, error) {
	return readJSONL(r, limit, func(index int, row map[string]interface{}) (Record, string) {
		disease := stringField(row, "Disease")
		question := stringField(row, "Question")
		if disease == "" || question == "" {
			return Record{}, "missing disease or question"
		}
		return Record{
			Index: index,
			Text:  fmt.Sprintf("Câu hỏi: %s\nCâu trả lời: %s", question, disease),
			Metadata: map[string]interface{}{
				"doc_type":       DocTypeDisease,
				"question":       question,
				"disease":        disease,
				"source":         DiseaseSource,
				"original_index": index,
			},
		}, ""
	})
}

// ReadArticles parses the medical article corpus (question, answer per line).
// Answers shorter than 50 characters are skipped.
func ReadArticles(r io.Reader, limit int) ([]Record, []Skip, error) {
	return readJSONL(r, limit, func(index int, row map[string]interface{}) (Record, string) {
		answer := stringField(row, "answer")
		question := stringField(row, "question")
		if utf8.RuneCountInString(answer) < minArticleAnswerLength {
			return Record{}, "insufficient answer"
		}
		return Record{
			Index: index,
			Text:  fmt.Sprintf("Câu hỏi: %s\nTrả lời: %s", question, answer),
			Metadata: map[string]interface{}{
				"doc_type":       DocTypeArticle,
				"question":       question,
				"answer":         answer,
				"source":         ArticleSource,
				"original_index": index,
			},
		}, ""
	})
}

func readJSONL(r io.Reader, limit int, parse rowFunc) ([]Record, []Skip, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		records []Record
		skips   []Skip
		index   int
		line    int
	)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if limit > 0 && index >= limit {
			break
		}

		var row map[string]interface{}
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON at line %d: %w", line, err)
		}

		rec, reason := parse(index, row)
		if reason != "" {
			skips = append(skips, Skip{Index: index, Reason: reason})
		} else {
			records = append(records, rec)
		}
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read dataset: %w", err)
	}
	return records, skips, nil
}

func stringField(row map[string]interface{}, key string) string {
	v, ok := row[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
