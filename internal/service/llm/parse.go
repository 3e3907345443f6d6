package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"onepager/internal/domain/services"
)

// extractJSON returns the outermost JSON object in text. Models often wrap
// JSON in a fenced code block or add a sentence before it.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return text[start : end+1], nil
}

func parseGenerateResponse(text string) (*services.GenerateOnePagerResponse, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var resp services.GenerateOnePagerResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if len(resp.Fields) == 0 {
		return nil, fmt.Errorf("response contained no fields")
	}
	return &resp, nil
}

func parseSummarizeResponse(text string) (*services.RefineResponse, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Items []string `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("response contained no items")
	}
	return &services.RefineResponse{Items: items}, nil
}

func parseRewriteResponse(text string) (*services.RefineResponse, error) {
	refined := strings.TrimSpace(text)
	if refined == "" {
		return nil, fmt.Errorf("empty response")
	}
	return &services.RefineResponse{RefinedText: refined}, nil
}
