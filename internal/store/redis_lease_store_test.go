package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFields(t *testing.T) {
	fields := statusFields("work", map[string]string{"retrieved": "7"})

	assert.Equal(t, []interface{}{"status", "work", "data:retrieved", "7"}, fields)
}

func TestStatusFieldsEmptyPayload(t *testing.T) {
	fields := statusFields("end", nil)

	assert.Equal(t, []interface{}{"status", "end"}, fields)
}

func TestStaleDataFields(t *testing.T) {
	existing := []string{"started", "ended", "owner", "status", "data:for", "data:retrieved"}

	// Only the payload fields are replaced; lease flags stay untouched.
	assert.ElementsMatch(t, []string{"data:for", "data:retrieved"}, staleDataFields(existing))
	assert.Empty(t, staleDataFields([]string{"started", "status"}))
}
