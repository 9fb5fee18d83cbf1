package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFullDraft(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"name": "Alice Chen",
		"email": "alice@example.edu",
		"role": "Backend Developer",
		"skills": ["API design"],
		"tech_stack": ["Go", "Postgres"],
		"experience": ["Backend intern at a fintech"],
		"school": "State University",
		"location": "Boston",
		"description": "Builds infra for fun.",
		"github": "alicechen",
		"devpost": "alice-c",
		"num_hackathons": 3
	}` + "\n```"}
	extractor := NewExtractor(gen, nil)

	draft, err := extractor.Extract(context.Background(), "some resume text", "resume")
	require.NoError(t, err)

	assert.Equal(t, "Alice Chen", draft.Name)
	assert.Equal(t, "alice@example.edu", draft.Email)
	assert.Equal(t, []string{"Go", "Postgres"}, draft.TechStack)
	assert.Equal(t, 3, draft.NumHackathons)
}

func TestExtractMissingFieldsStayPresent(t *testing.T) {
	gen := &stubGenerator{response: `{"name": "Bob"}`}
	extractor := NewExtractor(gen, nil)

	draft, err := extractor.Extract(context.Background(), "github repo list", "github")
	require.NoError(t, err)

	// Absent fields come back as zero values, never missing keys.
	assert.Equal(t, "Bob", draft.Name)
	assert.Equal(t, "", draft.Email)
	assert.Equal(t, []string{}, draft.Skills)
	assert.Equal(t, []string{}, draft.TechStack)
	assert.Equal(t, []string{}, draft.Experience)
	assert.Equal(t, 0, draft.NumHackathons)
}

func TestExtractHardFailsOnGarbage(t *testing.T) {
	gen := &stubGenerator{response: "Sorry, I can't parse that document."}
	extractor := NewExtractor(gen, nil)

	_, err := extractor.Extract(context.Background(), "blob", "resume")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestExtractHardFailsOnUpstreamError(t *testing.T) {
	gen := &stubGenerator{err: &UpstreamError{Op: "generate", Err: errors.New("timeout")}}
	extractor := NewExtractor(gen, nil)

	_, err := extractor.Extract(context.Background(), "blob", "resume")
	require.Error(t, err)

	var ue *UpstreamError
	assert.ErrorAs(t, err, &ue)
}

func TestExtractRejectsEmptyBlob(t *testing.T) {
	extractor := NewExtractor(&stubGenerator{}, nil)

	_, err := extractor.Extract(context.Background(), "   ", "resume")
	assert.Error(t, err)
}

func TestBuildExtractPromptInterpolation(t *testing.T) {
	prompt := buildExtractPrompt("RAW TEXT HERE", "github")
	assert.Contains(t, prompt, "github material")
	assert.Contains(t, prompt, "RAW TEXT HERE")
	assert.NotContains(t, prompt, "{{SOURCE_KIND}}")
	assert.NotContains(t, prompt, "{{SOURCE_TEXT}}")
}
