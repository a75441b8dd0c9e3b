package websearch

import (
	"fmt"
	"strings"
)

const (
	untitled  = "Untitled"
	noContent = "No content available"
	noURL     = "No URL available"
)

// FormatResults renders hits as numbered sources followed by the citation
// reminder handed back to the model.
func FormatResults(results []Result) string {
	var b strings.Builder
	b.WriteString("Here are the retrieved documents from the internet:\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "**Source %d:**\n- Title: %s\n- Content: %s\n- URL: %s\n\n",
			i+1, orDefault(r.Title, untitled), orDefault(r.Content, noContent), orDefault(r.URL, noURL))
	}
	b.WriteString("---\nIMPORTANT: When using these search results in your response, you MUST cite the sources by including the URLs and mentioning which source number you're referencing.\n")
	return b.String()
}

// ToolParameters is the JSON schema for the tavily_search(query) function.
func ToolParameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "This is user query",
			},
		},
		"required": []string{"query"},
	}
}

const ToolDescription = "Get information in internet based on user query"

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
