package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "janus:liveline:pick-1", LiveLineKey("pick-1"))
	assert.Equal(t, "janus:hedge:pick-1", HedgeKey("pick-1"))
	assert.NotEqual(t, LiveLineKey("a"), HedgeKey("a"))
}
