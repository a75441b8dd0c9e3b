package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTruncatesResults(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tv-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results":[
			{"title":"A","url":"https://a.vn","content":"a"},
			{"title":"B","url":"https://b.vn","content":"b"},
			{"title":"C","url":"https://c.vn","content":"c"},
			{"title":"D","url":"https://d.vn","content":"d"}]}`))
	}))
	defer srv.Close()

	c := NewTavilyClient(Config{APIKey: "tv-key", BaseURL: srv.URL}, nil)
	results, err := c.Search(context.Background(), "sốt xuất huyết")
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, "sốt xuất huyết", got.Query)
	assert.Equal(t, 3, got.MaxResults)
}

func TestSearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewTavilyClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Search(context.Background(), "q")
	assert.Error(t, err)

	_, err = NewTavilyClient(Config{APIKey: "k", BaseURL: srv.URL}, nil).Search(context.Background(), " ")
	assert.Error(t, err)

	_, err = NewTavilyClient(Config{BaseURL: srv.URL}, nil).Search(context.Background(), "q")
	assert.Error(t, err)
}

func TestFormatResultsDefaults(t *testing.T) {
	out := FormatResults([]Result{
		{Title: "WHO", URL: "https://who.int", Content: "Dengue..."},
		{},
	})
	want := "Here are the retrieved documents from the internet:\n\n" +
		"**Source 1:**\n- Title: WHO\n- Content: Dengue...\n- URL: https://who.int\n\n" +
		"**Source 2:**\n- Title: Untitled\n- Content: No content available\n- URL: No URL available\n\n" +
		"---\nIMPORTANT: When using these search results in your response, you MUST cite the sources by including the URLs and mentioning which source number you're referencing.\n"
	assert.Equal(t, want, out)
}

func TestToolParameters(t *testing.T) {
	params := ToolParameters()
	assert.Equal(t, "object", params["type"])
	assert.Equal(t, []string{"query"}, params["required"])
}
