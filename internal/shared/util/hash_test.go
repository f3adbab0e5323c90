package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerKey(t *testing.T) {
	got := OwnerKey("3f0c2a8e-user")
	assert.Equal(t, got, OwnerKey(" 3f0c2a8e-user "))
	assert.True(t, strings.HasPrefix(got, "u-"))
	assert.Len(t, got, 34)
	assert.NotEqual(t, got, OwnerKey("someone-else"))
	for _, ch := range strings.TrimPrefix(got, "u-") {
		assert.True(t, (ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9'), "non-hex character %q", ch)
	}
}
