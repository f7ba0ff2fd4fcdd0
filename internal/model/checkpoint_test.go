package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAspectKeyString(t *testing.T) {
	key := SearchAspect("funny")
	assert.Equal(t, "lease:search:funny", key.String())

	supply := AspectKey{Kind: AspectSupply, Partition: "all"}
	assert.Equal(t, "lease:supply:all", supply.String())
}

func TestLoadWindowIsZero(t *testing.T) {
	assert.True(t, LoadWindow{}.IsZero())
	assert.False(t, LoadWindow{StartTS: 1}.IsZero())
	assert.False(t, LoadWindow{LoadedCount: 3}.IsZero())
}
