package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testGateway builds a Gateway around a fake generate function without
// touching the real SDK client.
func testGateway(model string, fn generateFunc) *Gateway {
	return &Gateway{
		generate: fn,
		timeout:  time.Second,
		logger:   zap.NewNop(),
		model:    model,
		resolved: model != "",
	}
}

func TestNewGatewayRequiresAPIKey(t *testing.T) {
	_, err := NewGateway(context.Background(), "  ", "", 0, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestResolveModelFirstHealthyWins(t *testing.T) {
	calls := []string{}
	g := testGateway("", func(_ context.Context, model, _ string) (string, error) {
		calls = append(calls, model)
		if model == "gemini-2.0-flash" {
			return "ok", nil
		}
		return "", errors.New("404 model not found")
	})

	model, err := g.ResolveModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model)
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"}, calls)

	// Resolution is cached: no further probes.
	model, err = g.ResolveModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", model)
	assert.Len(t, calls, 3)
}

func TestResolveModelCredentialFailureAborts(t *testing.T) {
	calls := 0
	g := testGateway("", func(_ context.Context, _, _ string) (string, error) {
		calls++
		return "", errors.New("401 unauthorized: invalid API key")
	})

	_, err := g.ResolveModel(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadCredential)
	assert.Equal(t, 1, calls, "credential failures must not advance the fallback list")
}

func TestResolveModelExhaustion(t *testing.T) {
	g := testGateway("", func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("404 model not found")
	})

	_, err := g.ResolveModel(context.Background())
	assert.ErrorIs(t, err, ErrNoAvailableModel)
}

func TestPinnedModelSkipsProbing(t *testing.T) {
	probes := 0
	g := testGateway("gemini-2.5-pro", func(_ context.Context, model, prompt string) (string, error) {
		if prompt == probePrompt {
			probes++
		}
		return "generated text", nil
	})

	out, err := g.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "generated text", out)
	assert.Equal(t, 0, probes)
	assert.Equal(t, "gemini-2.5-pro", g.Model())
}

func TestGenerateWrapsUpstreamErrors(t *testing.T) {
	g := testGateway("gemini-2.5-pro", func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("connection reset")
	})

	_, err := g.Generate(context.Background(), "hello")
	require.Error(t, err)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "generate", ue.Op)
}

func TestNilGatewayDegradesToConfigurationError(t *testing.T) {
	var g *Gateway
	_, err := g.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestCredentialErr(t *testing.T) {
	assert.True(t, credentialErr(errors.New("API key not valid")))
	assert.True(t, credentialErr(errors.New("403 permission denied")))
	assert.False(t, credentialErr(errors.New("404 model not found")))
	assert.False(t, credentialErr(nil))
}
