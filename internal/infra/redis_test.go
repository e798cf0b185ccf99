package infra

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLockToken_UniqueUUIDs(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		token := newLockToken()
		_, err := uuid.Parse(token)
		require.NoError(t, err)
		assert.False(t, seen[token], "token %s issued twice", token)
		seen[token] = true
	}
}
