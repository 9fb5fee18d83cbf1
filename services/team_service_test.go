package services

import (
	"testing"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds a gorm handle that renders SQL without touching a
// database, for asserting on the statements the services generate.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=app dbname=app sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db
}

func TestMembershipQueriesTakeRowLocks(t *testing.T) {
	db := dryRunDB(t)

	// Two concurrent accepts against the same team must serialize on the
	// team row, or the second save overwrites the first roster.
	openSQL := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var team models.Team
		return openTeamQuery(tx, "hack-1").First(&team)
	})
	assert.Contains(t, openSQL, "FOR UPDATE")
	assert.Contains(t, openSQL, "is_full")

	lockSQL := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var team models.Team
		return lockTeamQuery(tx, "team-1").First(&team)
	})
	assert.Contains(t, lockSQL, "FOR UPDATE")
	assert.Contains(t, lockSQL, "team-1")
}

func TestRolesCovered(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{"Frontend Developer", []string{"Frontend"}},
		{"Backend Developer", []string{"Backend"}},
		{"Full Stack Engineer", []string{"Frontend", "Backend"}},
		{"UI/UX Designer", []string{"Design"}},
		{"Data Scientist", []string{"Data"}},
		{"ML Engineer", []string{"Data"}},
		{"DevOps", []string{"Backend"}},
		{"Mobile Developer", []string{"Frontend"}},
		{"Product Designer", []string{"Design"}},
		{"", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rolesCovered(tt.role), "role=%q", tt.role)
	}
}

func TestNeededRolesFor(t *testing.T) {
	solo := []models.UserProfile{{Role: "Backend Developer"}}
	assert.Equal(t, []string{"Frontend", "Design", "Data"}, neededRolesFor(solo))

	pair := []models.UserProfile{
		{Role: "Full Stack Engineer"},
		{Role: "Data Scientist"},
	}
	assert.Equal(t, []string{"Design"}, neededRolesFor(pair))

	covered := []models.UserProfile{
		{Role: "Frontend Developer"},
		{Role: "Backend Developer"},
		{Role: "UI/UX Designer"},
		{Role: "ML Engineer"},
	}
	assert.Equal(t, []string{}, neededRolesFor(covered))

	// Unbucketable roles leave the full base set needed.
	assert.Equal(t, baseRoles, neededRolesFor([]models.UserProfile{{Role: "Chief Vibes Officer"}}))
}

func TestNeededRolesForPreservesBaseOrder(t *testing.T) {
	members := []models.UserProfile{{Role: "UI/UX Designer"}}
	assert.Equal(t, []string{"Frontend", "Backend", "Data"}, neededRolesFor(members))
}
