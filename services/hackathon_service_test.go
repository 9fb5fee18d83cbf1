package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugBase(t *testing.T) {
	assert.Equal(t, "hacktech-2026", slugBase("HackTech 2026"))
	assert.Equal(t, "ecole-42-hackathon", slugBase("École 42 Hackathon"))
	// Names with nothing slugifiable still get a usable base.
	assert.Equal(t, "hackathon", slugBase("!!!"))
	assert.Equal(t, "hackathon", slugBase(""))
}
