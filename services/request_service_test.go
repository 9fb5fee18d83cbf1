package services

import (
	"fmt"
	"testing"

	"github.com/Arwa-786/MLH-HackForhackers-sub000/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPendingSendCheck(t *testing.T) {
	pending := []models.TeamRequest{
		{FromUserID: "u1", ToUserID: "u2", Status: models.RequestStatusPending},
		{FromUserID: "u1", ToUserID: "u3", Status: models.RequestStatusPending},
	}

	assert.NoError(t, pendingSendCheck(pending, "u9"))
	assert.ErrorIs(t, pendingSendCheck(pending, "u2"), ErrDuplicateRequest)
	assert.NoError(t, pendingSendCheck(nil, "u2"))

	atCap := make([]models.TeamRequest, models.MaxPendingRequests)
	for i := range atCap {
		atCap[i] = models.TeamRequest{ToUserID: fmt.Sprintf("r%d", i)}
	}
	assert.ErrorIs(t, pendingSendCheck(atCap, "u9"), ErrRequestLimit)
	// The duplicate wins over the cap so the caller reports the sharper error.
	assert.ErrorIs(t, pendingSendCheck(atCap, "r0"), ErrDuplicateRequest)
}

func TestSenderLockSerializesSends(t *testing.T) {
	db := dryRunDB(t)

	// Row locks on the sender's existing pending rows cannot stop phantom
	// inserts, so the send path must take a per-sender advisory lock before
	// counting.
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return senderLockQuery(tx, "u1")
	})
	assert.Contains(t, sql, "pg_advisory_xact_lock")
	assert.Contains(t, sql, "hashtext")
	assert.Contains(t, sql, "u1")
}
