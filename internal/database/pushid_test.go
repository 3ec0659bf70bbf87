package database

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPushKeyFormat(t *testing.T) {
	key := NewPushKey()
	assert.Len(t, key, 20)
	for _, c := range key {
		assert.Contains(t, pushChars, string(c))
	}
}

func TestNewPushKeyChronologicalOrder(t *testing.T) {
	keys := make([]string, 500)
	for i := range keys {
		keys[i] = NewPushKey()
	}

	sorted := append([]string{}, keys...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, keys, "keys must already be in generation order")

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		_, dup := seen[k]
		assert.False(t, dup, "duplicate key %s", k)
		seen[k] = struct{}{}
	}
}
