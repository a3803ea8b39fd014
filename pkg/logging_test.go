package docdedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugFlags(t *testing.T) {
	SetDebugFlags("scan,rewrite")
	defer SetDebugFlags("")

	assert.True(t, IsDebugEnabled("scan"))
	assert.True(t, IsDebugEnabled("rewrite"))
	assert.False(t, IsDebugEnabled("index"))
}

func TestDebugFlagsTrimmed(t *testing.T) {
	SetDebugFlags(" scan , rewrite ")
	defer SetDebugFlags("")

	assert.True(t, IsDebugEnabled("scan"))
	assert.True(t, IsDebugEnabled("rewrite"))
}

func TestDebugFlagsKeyValue(t *testing.T) {
	SetDebugFlags("scan:on,rewrite:off")
	defer SetDebugFlags("")

	assert.True(t, IsDebugEnabled("scan"))
	assert.False(t, IsDebugEnabled("rewrite"))
}

func TestDebugFlagsCleared(t *testing.T) {
	SetDebugFlags("scan")
	SetDebugFlags("")
	assert.False(t, IsDebugEnabled("scan"))
}
