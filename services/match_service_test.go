package services

import (
	"testing"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/ai"
	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/stretchr/testify/assert"
)

func scoredCandidate(name string, score float64) ScoredCandidate {
	return ScoredCandidate{
		User:          models.UserProfile{ID: name, Name: name},
		MatchResponse: MatchResponse{Score: score, Category: ai.CategoryGoodMatch},
	}
}

func TestSortScoredCandidates(t *testing.T) {
	scored := []ScoredCandidate{
		scoredCandidate("Dana", 50),
		scoredCandidate("Bob", 92),
		scoredCandidate("Carol", 50),
		scoredCandidate("Alice", 78),
	}

	sortScoredCandidates(scored)

	names := make([]string, len(scored))
	for i, s := range scored {
		names[i] = s.User.Name
	}
	// Score descending, ties broken by name ascending.
	assert.Equal(t, []string{"Bob", "Alice", "Carol", "Dana"}, names)
}

func TestWithoutIDs(t *testing.T) {
	assert.Equal(t, []string{"b", "c"}, withoutIDs([]string{"a", "b", "c"}, "a"))
	assert.Equal(t, []string{"b"}, withoutIDs([]string{"a", "b", "a"}, "a", "c"))
	assert.Empty(t, withoutIDs([]string{"a"}, "a"))
	assert.Empty(t, withoutIDs(nil, "a"))
	// No exclusions: the roster passes through as-is.
	assert.Equal(t, []string{"a", "b"}, withoutIDs([]string{"a", "b"}))
}

func TestToMatchResponseCollapsesCategory(t *testing.T) {
	strong := toMatchResponse(&ai.MatchResult{Score: 91, Tier: ai.TierDreamTeam, Reason: "r", NeededRoles: []string{}})
	assert.Equal(t, ai.CategoryStrongMatch, strong.Category)

	good := toMatchResponse(&ai.MatchResult{Score: 78, Tier: ai.TierStrong, Reason: "r", NeededRoles: []string{}})
	assert.Equal(t, ai.CategoryGoodMatch, good.Category)

	degraded := toMatchResponse(ai.Degraded(nil))
	assert.Equal(t, 50.0, degraded.Score)
	assert.Equal(t, ai.CategoryGoodMatch, degraded.Category)
	assert.True(t, degraded.Degraded)
	assert.Equal(t, []string{}, degraded.NeededRoles)
}
