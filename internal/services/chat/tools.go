// File: internal/services/chat/tools.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/iyunix/go-meddy/internal/services/ai"
	"github.com/iyunix/go-meddy/internal/services/websearch"
)

// AgentTool is a function the general agent may call.
type AgentTool struct {
	Definition ai.Tool
	Run        func(ctx context.Context, arguments string) (string, error)
}

var errDivideByZero = errors.New("cannot divide by zero")

type operands struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

func operandSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"a": map[string]interface{}{"type": "number"},
			"b": map[string]interface{}{"type": "number"},
		},
		"required": []string{"a", "b"},
	}
}

func arithmeticTool(name, description string, op func(a, b float64) (float64, error)) AgentTool {
	return AgentTool{
		Definition: ai.Tool{Name: name, Description: description, Parameters: operandSchema()},
		Run: func(_ context.Context, arguments string) (string, error) {
			var args operands
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
			}
			if args.A == nil || args.B == nil {
				return "", fmt.Errorf("%s needs both a and b", name)
			}
			v, err := op(*args.A, *args.B)
			if err != nil {
				return "", err
			}
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		},
	}
}

// CalculatorTools returns add, subtract, multiply and divide.
func CalculatorTools() []AgentTool {
	return []AgentTool{
		arithmeticTool("multiply", "Multiply two integers", func(a, b float64) (float64, error) { return a * b, nil }),
		arithmeticTool("add", "Add two integers", func(a, b float64) (float64, error) { return a + b, nil }),
		arithmeticTool("subtract", "Subtract two integers", func(a, b float64) (float64, error) { return a - b, nil }),
		arithmeticTool("divide", "Divide two integers", func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, errDivideByZero
			}
			return a / b, nil
		}),
	}
}

// SearchTool exposes web search to the agent as search_internet(query).
func SearchTool(searcher websearch.Searcher) AgentTool {
	return AgentTool{
		Definition: ai.Tool{
			Name:        "search_internet",
			Description: "Search the internet",
			Parameters:  websearch.ToolParameters(),
		},
		Run: func(ctx context.Context, arguments string) (string, error) {
			query, err := parseQuery(arguments)
			if err != nil {
				return "", err
			}
			results, err := searcher.Search(ctx, query)
			if err != nil {
				return "", err
			}
			return websearch.FormatResults(results), nil
		},
	}
}

func parseQuery(arguments string) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid search arguments: %w", err)
	}
	if args.Query == "" {
		return "", errors.New("search query is empty")
	}
	return args.Query, nil
}
