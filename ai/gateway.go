package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// modelFallbacks is the probe order when GEMINI_MODEL does not pin a model.
// Model names churn on the Gemini side; callers never see which one won.
var modelFallbacks = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

const (
	defaultTimeout = 30 * time.Second
	probePrompt    = "Reply with the single word: ok"
)

type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// Gateway wraps the Gemini API behind a prompt-in, text-out surface. A
// working model name is resolved lazily on first use and cached for the
// process lifetime.
type Gateway struct {
	client   *genai.Client
	generate generateFunc
	timeout  time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	model    string
	resolved bool
}

// NewGateway builds a Gateway. A non-empty model pins that name and skips
// fallback probing. An empty apiKey is a configuration error.
func NewGateway(ctx context.Context, apiKey, model string, timeout time.Duration, logger *zap.Logger) (*Gateway, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Gateway{
		client:   client,
		timeout:  timeout,
		logger:   logger,
		model:    strings.TrimSpace(model),
		resolved: strings.TrimSpace(model) != "",
	}
	g.generate = g.generateRaw
	return g, nil
}

// ResolveModel returns the model name all generation calls will use. The
// first call probes the fallback list with a trivial prompt; the winner is
// cached. Credential failures abort the probe immediately since no other
// candidate can fix them; exhausting the list is ErrNoAvailableModel.
func (g *Gateway) ResolveModel(ctx context.Context) (string, error) {
	if g == nil || g.generate == nil {
		return "", ErrMissingAPIKey
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolved {
		return g.model, nil
	}

	for _, candidate := range modelFallbacks {
		probeCtx, cancel := context.WithTimeout(ctx, g.timeout)
		_, err := g.generate(probeCtx, candidate, probePrompt)
		cancel()
		if err == nil {
			g.logger.Info("resolved gemini model", zap.String("model", candidate))
			g.model = candidate
			g.resolved = true
			return candidate, nil
		}
		if credentialErr(err) {
			return "", fmt.Errorf("%w: %v", ErrBadCredential, err)
		}
		g.logger.Debug("gemini model candidate unavailable",
			zap.String("model", candidate),
			zap.Error(err),
		)
	}

	return "", ErrNoAvailableModel
}

// Generate sends prompt to the resolved model and returns the raw generated
// text. Callers must not assume the output is well-formed JSON even when the
// prompt demands it.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.generate == nil {
		return "", ErrMissingAPIKey
	}

	model, err := g.ResolveModel(ctx)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.generate(callCtx, model, prompt)
	if err != nil {
		return "", &UpstreamError{Op: "generate", Err: err}
	}
	return out, nil
}

// Model returns the resolved model name, or "" before resolution.
func (g *Gateway) Model() string {
	if g == nil {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.model
}

func (g *Gateway) generateRaw(ctx context.Context, model, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

// credentialErr reports failures no other model candidate can fix. The SDK
// does not expose stable typed errors across versions, so this matches on
// the message.
func credentialErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"api key", "api_key", "unauthorized", "unauthenticated", "permission denied", "401", "403"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
