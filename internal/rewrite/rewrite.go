package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// single description text to reinterpret
type RewriteItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// reinterpreted text item
type RewriteResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for AI text reinterpretation
type Rewriter interface {
	Rewrite(
		ctx context.Context,
		items []RewriteItem,
	) ([]RewriteResult, error)
}

// optional interface for rewriters that support concurrent batch processing
type ConcurrentRewriter interface {
	Rewriter
	RewriteWithConcurrency(
		ctx context.Context,
		items []RewriteItem,
		concurrency int,
	) ([]RewriteResult, error)
}

// rewrite service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Model     string
	Prompt    string
	MaxChars  int // target length per rewritten text (0 = no limit)
	BatchSize int // items per API request (default 50)
}

const DefaultBatchSize = 50

// creates Rewriter based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Rewriter, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiRewriter(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIRewriter(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicRewriter(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported rewrite provider: %s", provider)
	}
}

// BuildPrompt creates the reinterpretation prompt for LLM providers
func BuildPrompt(opts Options, items []RewriteItem) string {
	var sb strings.Builder

	sb.WriteString(
		"Rewrite the following audio description captions so they read " +
			"naturally and stay concise.\n\n",
	)

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Keep the meaning of each caption; do not invent details.\n",
	)
	if opts.MaxChars > 0 {
		sb.WriteString(fmt.Sprintf(
			"2. Each rewritten text must be at most %d characters.\n",
			opts.MaxChars,
		))
	} else {
		sb.WriteString("2. Keep each rewritten text roughly as short as the input.\n")
	}
	sb.WriteString("3. Preserve line breaks (\\N) in the same positions.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString(
		"6. The 'index' values must match the input indices exactly.\n",
	)
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the rewritten JSON array only:")

	return sb.String()
}
