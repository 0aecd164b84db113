package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
)

// ErrNoToolCall means the free text did not map to any tool.
var ErrNoToolCall = errors.New("could not match the request to a tool")

// Interpreter maps free text to a tool call.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (Call, error)
}

type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiInterpreter asks a Gemini model to pick a tool and its arguments.
type GeminiInterpreter struct {
	generate    generateFunc
	descriptors []tools.Descriptor
	close       func() error
}

func NewGeminiInterpreter(ctx context.Context, apiKey, modelName string, descriptors []tools.Descriptor) (*GeminiInterpreter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	generate := func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("failed to interpret request: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", ErrNoToolCall
		}
		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		return sb.String(), nil
	}

	return &GeminiInterpreter{generate: generate, descriptors: descriptors, close: client.Close}, nil
}

func (g *GeminiInterpreter) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}

func (g *GeminiInterpreter) Interpret(ctx context.Context, text string) (Call, error) {
	prompt, err := g.prompt(text)
	if err != nil {
		return Call{}, err
	}
	reply, err := g.generate(ctx, prompt)
	if err != nil {
		return Call{}, err
	}
	return decodeCall(reply)
}

func (g *GeminiInterpreter) prompt(text string) (string, error) {
	schema, err := json.Marshal(g.descriptors)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`You route retail inventory questions to tools. The available tools are: %s
Reply with a single JSON object {"tool": "<name>", "arguments": {...}} using only these tools and their argument names. Dates are YYYY-MM-DD. If no tool fits, reply {"tool": ""}.
The user request is: %q`,
		schema, text,
	), nil
}

// decodeCall parses the model's JSON reply, tolerating a fenced code block.
func decodeCall(reply string) (Call, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	var out struct {
		Tool      string         `json:"tool"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &out); err != nil {
		return Call{}, fmt.Errorf("%w: %v", ErrNoToolCall, err)
	}

	switch out.Tool {
	case tools.PredictDemand, tools.RecommendPurchase:
	default:
		return Call{}, ErrNoToolCall
	}
	if out.Arguments == nil {
		out.Arguments = map[string]any{}
	}
	return Call{Tool: out.Tool, Args: out.Arguments}, nil
}
