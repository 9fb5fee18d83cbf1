package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "hello", TruncateForLog("hello", 10))
	assert.Equal(t, "hel...", TruncateForLog("hello world", 3))
	assert.Equal(t, "", TruncateForLog("hello", 0))
	assert.Equal(t, "hello", TruncateForLog("  hello  ", 10))
}
