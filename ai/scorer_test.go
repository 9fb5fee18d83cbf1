package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func sampleUser(name string) *models.UserProfile {
	return &models.UserProfile{
		ID:          strings.ToLower(name),
		Name:        name,
		Role:        "Backend Developer",
		Skills:      []string{"API design"},
		TechStack:   []string{"Go", "Postgres"},
		Experience:  []string{"2 internships"},
		School:      "State University",
		Location:    "Boston",
		Description: "Likes building infra.",
	}
}

func TestBuildMatchPromptDeterministic(t *testing.T) {
	a, b := sampleUser("Alice"), sampleUser("Bob")
	roster := []models.UserProfile{*sampleUser("Carol")}

	assert.Equal(t, buildMatchPrompt(a, b, nil), buildMatchPrompt(a, b, nil))
	assert.Equal(t, buildMatchPrompt(a, b, roster), buildMatchPrompt(a, b, roster))
}

func TestBuildMatchPromptTemplateChoice(t *testing.T) {
	a, b := sampleUser("Alice"), sampleUser("Bob")

	pair := buildMatchPrompt(a, b, nil)
	assert.Contains(t, pair, "Evaluator:")
	assert.Contains(t, pair, "- Name: Alice")
	assert.NotContains(t, pair, "Current team roster:")

	team := buildMatchPrompt(a, b, []models.UserProfile{*sampleUser("Carol"), *sampleUser("Dave")})
	assert.Contains(t, team, "Current team roster:")
	assert.Contains(t, team, "Member 1:")
	assert.Contains(t, team, "Member 2:")
	assert.NotContains(t, team, "Evaluator:")
}

func TestRenderProfileListHandling(t *testing.T) {
	u := sampleUser("Alice")
	u.Skills = []string{"React", "react", " React ", "Node.js"}
	u.School = ""
	u.Experience = nil

	rendered := renderProfile(u)
	assert.Contains(t, rendered, "- Skills: React, Node.js")
	assert.Contains(t, rendered, "- School: not specified")
	assert.Contains(t, rendered, "- Experience: not specified")
}

func TestScoreCategoryRecomputedFromScore(t *testing.T) {
	// The stub claims Strong Match but 78 < 85, so the surfaced category
	// must be recomputed, not trusted.
	gen := &stubGenerator{response: `{"score": 78, "reason": "Pros: complementary stacks. Major Risk: overlap.", "category": "Strong Match"}`}
	scorer := NewScorer(gen, nil)

	result, err := scorer.Score(context.Background(), sampleUser("Alice"), sampleUser("Bob"), nil)
	require.NoError(t, err)

	assert.Equal(t, 78.0, result.Score)
	assert.Equal(t, TierStrong, result.Tier)
	assert.Equal(t, CategoryGoodMatch, result.Category())
	assert.False(t, result.Degraded)
}

func TestScoreStrongMatchThreshold(t *testing.T) {
	tests := []struct {
		score    float64
		category string
		tier     Tier
	}{
		{92, CategoryStrongMatch, TierDreamTeam},
		{85, CategoryStrongMatch, TierStrong},
		{84.9, CategoryGoodMatch, TierStrong},
		{55, CategoryGoodMatch, TierAverage},
		{12, CategoryGoodMatch, TierWeak},
	}

	for _, tt := range tests {
		result := &MatchResult{Score: tt.score, Tier: TierFor(tt.score)}
		assert.Equal(t, tt.category, result.Category(), "score=%v", tt.score)
		assert.Equal(t, tt.tier, result.Tier, "score=%v", tt.score)
	}
}

func TestScoreClampsAndCoerces(t *testing.T) {
	gen := &stubGenerator{response: "```json\n{\"score\": \"150\", \"reason\": \"Pros: all. Major Risk: none.\", \"needed_roles\": [\"frontend\", \"design\"]}\n```"}
	scorer := NewScorer(gen, nil)

	result, err := scorer.Score(context.Background(), sampleUser("Alice"), sampleUser("Bob"), nil)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, TierDreamTeam, result.Tier)
	assert.Equal(t, []string{"Frontend", "Design"}, result.NeededRoles)
}

func TestScoreMissingScoreIsHardError(t *testing.T) {
	gen := &stubGenerator{response: `{"reason": "Pros: fine. Major Risk: none.", "category": "Good Match"}`}
	scorer := NewScorer(gen, nil)

	_, err := scorer.Score(context.Background(), sampleUser("Alice"), sampleUser("Bob"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.True(t, IsMalformed(err))
}

func TestScoreGarbageResponse(t *testing.T) {
	gen := &stubGenerator{response: "I cannot evaluate these profiles."}
	scorer := NewScorer(gen, nil)

	_, err := scorer.Score(context.Background(), sampleUser("Alice"), sampleUser("Bob"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoJSONObject)
}

func TestScoreGeneratorErrorPropagates(t *testing.T) {
	upstream := &UpstreamError{Op: "generate", Err: errors.New("timeout")}
	gen := &stubGenerator{err: upstream}
	scorer := NewScorer(gen, nil)

	_, err := scorer.Score(context.Background(), sampleUser("Alice"), sampleUser("Bob"), nil)
	require.Error(t, err)

	var ue *UpstreamError
	assert.ErrorAs(t, err, &ue)
}

func TestDegradedShape(t *testing.T) {
	result := Degraded(&UpstreamError{Op: "generate", Err: errors.New("timeout")})

	assert.Equal(t, 50.0, result.Score)
	assert.Equal(t, TierAverage, result.Tier)
	assert.Equal(t, CategoryGoodMatch, result.Category())
	assert.Equal(t, []string{}, result.NeededRoles)
	assert.True(t, result.Degraded)
	assert.Contains(t, result.Reason, "scoring unavailable")
}

func TestFailureClassBuckets(t *testing.T) {
	assert.Contains(t, FailureClass(ErrMissingAPIKey), "not configured")
	assert.Contains(t, FailureClass(ErrBadCredential), "not configured")
	assert.Contains(t, FailureClass(ErrNoAvailableModel), "no reasoning model")
	assert.Contains(t, FailureClass(ErrNoJSONObject), "unreadable")
	assert.Contains(t, FailureClass(errors.New("boom")), "request failed")
	assert.Equal(t, "", FailureClass(nil))
}
