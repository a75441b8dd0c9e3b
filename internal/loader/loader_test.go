package loader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iyunix/go-meddy/internal/services/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diseases = `{"Disease":"Cúm","Question":"Tôi bị sốt và ho, tôi bị bệnh gì?"}

{"Disease":"","Question":"Thiếu bệnh"}
{"Disease":"Sởi","Question":"Tôi bị phát ban đỏ?"}
`

func TestReadDiseases(t *testing.T) {
	records, skips, err := ReadDiseases(strings.NewReader(diseases), 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []Skip{{Index: 1, Reason: "missing disease or question"}}, skips)

	first := records[0]
	assert.Equal(t, "Câu hỏi: Tôi bị sốt và ho, tôi bị bệnh gì?\nCâu trả lời: Cúm", first.Text)
	assert.Equal(t, map[string]interface{}{
		"doc_type":       "disease_info",
		"question":       "Tôi bị sốt và ho, tôi bị bệnh gì?",
		"disease":        "Cúm",
		"source":         "PB3002/ViMedical_Disease",
		"original_index": 0,
	}, first.Metadata)
	assert.Equal(t, 2, records[1].Metadata["original_index"])
}

func TestReadDiseasesLimit(t *testing.T) {
	records, skips, err := ReadDiseases(strings.NewReader(diseases), 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Empty(t, skips)
}

func TestReadArticlesSkipsShortAnswers(t *testing.T) {
	long := strings.Repeat("á", 50)
	input := `{"question":"q1","answer":"ngắn"}` + "\n" + `{"question":"q2","answer":"` + long + `"}`

	records, skips, err := ReadArticles(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []Skip{{Index: 0, Reason: "insufficient answer"}}, skips)
	assert.Equal(t, "Câu hỏi: q2\nTrả lời: "+long, records[0].Text)
	assert.Equal(t, "medical_article", records[0].Metadata["doc_type"])
	assert.Equal(t, "medical_vietnamese_datasets", records[0].Metadata["source"])
	assert.Equal(t, 1, records[0].Metadata["original_index"])
}

func TestReadRejectsBadJSON(t *testing.T) {
	_, _, err := ReadArticles(strings.NewReader("{\"question\":\"ok\"}\nnot json"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

type fakeBuilder struct {
	failOn   string
	uploaded []vectorstore.Point
}

func (f *fakeBuilder) PreparePoints(_ context.Context, text string, metadata map[string]interface{}) ([]vectorstore.Point, error) {
	if text == f.failOn {
		return nil, errors.New("embedding quota exceeded")
	}
	payload := map[string]interface{}{"content": text}
	for k, v := range metadata {
		payload[k] = v
	}
	return []vectorstore.Point{{Vector: []float32{1}, Payload: payload}}, nil
}

func (f *fakeBuilder) Upload(_ context.Context, points []vectorstore.Point) error {
	f.uploaded = append(f.uploaded, points...)
	return nil
}

func TestLoaderPrepareAndUpload(t *testing.T) {
	records, skips, err := ReadDiseases(strings.NewReader(diseases), 0)
	require.NoError(t, err)

	builder := &fakeBuilder{failOn: records[1].Text}
	l := New(builder, nil)

	points, stats := l.Prepare(context.Background(), "disease", records, skips)
	assert.Equal(t, Stats{Dataset: "disease", Rows: 3, Skipped: 1, Failed: 1, Points: 1}, stats)
	require.Len(t, points, 1)
	assert.Equal(t, "Cúm", points[0].Payload["disease"])

	require.NoError(t, l.Upload(context.Background(), points))
	assert.Len(t, builder.uploaded, 1)
	require.NoError(t, l.Upload(context.Background(), nil))
}
