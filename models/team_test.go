package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamAddMember(t *testing.T) {
	team := Team{ID: "t1", HackathonID: "h1", Members: []string{"u1"}}

	require.NoError(t, team.AddMember("u2"))
	require.NoError(t, team.AddMember("u3"))
	assert.False(t, team.IsFull)

	require.NoError(t, team.AddMember("u4"))
	assert.True(t, team.IsFull)
	assert.Len(t, team.Members, MaxTeamSize)

	err := team.AddMember("u5")
	assert.ErrorIs(t, err, ErrTeamFull)
	assert.Len(t, team.Members, MaxTeamSize)
}

func TestTeamAddMemberIdempotent(t *testing.T) {
	team := Team{ID: "t1", Members: []string{"u1", "u2"}}

	require.NoError(t, team.AddMember("u2"))
	assert.Equal(t, []string{"u1", "u2"}, team.Members)
	assert.False(t, team.IsFull)
}

func TestTeamFullFlagTracksSize(t *testing.T) {
	team := Team{ID: "t1"}
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, team.AddMember(id))
		assert.Equal(t, i == 3, team.IsFull, "after %d members", i+1)
	}
}

func TestRequestPending(t *testing.T) {
	assert.True(t, (&TeamRequest{Status: RequestStatusPending}).Pending())
	assert.False(t, (&TeamRequest{Status: RequestStatusAccepted}).Pending())
	assert.False(t, (&TeamRequest{Status: RequestStatusCancelled}).Pending())
}

func TestUserRegisteredFor(t *testing.T) {
	u := UserProfile{Hackathons: []string{"h1", "h2"}}
	assert.True(t, u.RegisteredFor("h2"))
	assert.False(t, u.RegisteredFor("h3"))
}
