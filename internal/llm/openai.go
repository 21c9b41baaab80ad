package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Explain generates an advisory explanation via chat completion. The final
// line of the completion must be "CONFIDENCE: <0..1>"; a malformed response
// is an error so callers fall back to the deterministic critic.
func (p *OpenAIProvider) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1024
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: explainSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0, // deterministic as the API allows
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	explanation, confidence, err := parseExplanation(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &ExplainResponse{
		Explanation: explanation,
		Confidence:  confidence,
		Model:       model,
		TokensUsed:  resp.Usage.TotalTokens,
	}, nil
}

const explainSystemPrompt = "You are a cautious analyst explaining medical capability gaps. " +
	"Use ONLY the evidence quotes provided; never introduce outside facts. " +
	"End your answer with a final line of exactly: CONFIDENCE: <number between 0 and 1>"

// BuildPrompt renders the explain request as a prompt.
func BuildPrompt(req ExplainRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Facility: %s\nTarget capability: %s\n", req.FacilityID, req.Target)
	if req.DistanceKm != nil {
		fmt.Fprintf(&b, "Distance to nearest capable facility: %.1f km\n", *req.DistanceKm)
	} else {
		b.WriteString("Distance to nearest capable facility: unknown\n")
	}
	if len(req.MissingPrerequisites) > 0 {
		fmt.Fprintf(&b, "Missing prerequisites: %s\n", strings.Join(req.MissingPrerequisites, ", "))
	}
	if len(req.EvidenceQuotes) > 0 {
		b.WriteString("Evidence quotes (the only permitted sources):\n")
		for i, quote := range req.EvidenceQuotes {
			fmt.Fprintf(&b, "  [%d] %s\n", i+1, quote)
		}
	} else {
		b.WriteString("No evidence quotes available.\n")
	}
	b.WriteString("\nExplain the capability gap in two or three sentences, citing quotes by [n].")
	return b.String()
}

// parseExplanation splits the completion into explanation text and the
// trailing confidence line.
func parseExplanation(content string) (string, float64, error) {
	content = strings.TrimSpace(content)
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		rest, ok := strings.CutPrefix(line, "CONFIDENCE:")
		if !ok {
			break
		}
		confidence, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil || confidence < 0 || confidence > 1 {
			return "", 0, fmt.Errorf("malformed confidence line: %q", line)
		}
		explanation := strings.TrimSpace(strings.Join(lines[:i], "\n"))
		return explanation, confidence, nil
	}
	return "", 0, fmt.Errorf("response missing CONFIDENCE line")
}
