package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckpointKey(t *testing.T) {
	assert.Equal(t, "load_state:funny", checkpointKey("funny"))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, int64(0), parseInt(""))
	assert.Equal(t, int64(42), parseInt("42"))
	assert.Equal(t, int64(1461249600), parseInt("1461249600.0"))
	assert.Equal(t, int64(0), parseInt("garbage"))
}
