package database

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "docs/a", testDoc{Name: "first", Count: 3}))

	var got testDoc
	require.NoError(t, s.Get(ctx, "docs/a", &got))
	assert.Equal(t, "first", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestMemoryStoreGetMissingDecodesAsNull(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var got *testDoc
	require.NoError(t, s.Get(ctx, "docs/missing", &got))
	assert.Nil(t, got)
}

func TestMemoryStoreUpdateMultiLocation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users/u1/credits", 5))
	require.NoError(t, s.Set(ctx, "stale/node", "x"))

	err := s.Update(ctx, "", map[string]interface{}{
		"users/u1/credits": 15,
		"audit/k1":         testDoc{Name: "entry"},
		"stale/node":       nil,
	})
	require.NoError(t, err)

	var credits int
	require.NoError(t, s.Get(ctx, "users/u1/credits", &credits))
	assert.Equal(t, 15, credits)

	var entry testDoc
	require.NoError(t, s.Get(ctx, "audit/k1", &entry))
	assert.Equal(t, "entry", entry.Name)

	var stale *string
	require.NoError(t, s.Get(ctx, "stale/node", &stale))
	assert.Nil(t, stale)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "docs/a", "value"))
	require.NoError(t, s.Delete(ctx, "docs/a"))

	var got *string
	require.NoError(t, s.Get(ctx, "docs/a", &got))
	assert.Nil(t, got)
}

func TestMemoryStorePushKeysOrdered(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var keys []string
	for i := 0; i < 10; i++ {
		key, err := s.Push(ctx, "logs", testDoc{Count: i})
		require.NoError(t, err)
		keys = append(keys, key)
	}

	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i], "push keys must sort by creation order")
	}
}

func TestMemoryStoreCreateIsInsertIfAbsent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, "claims/tok1", testDoc{Name: "first"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Create(ctx, "claims/tok1", testDoc{Name: "second"})
	require.NoError(t, err)
	assert.False(t, created)

	var got testDoc
	require.NoError(t, s.Get(ctx, "claims/tok1", &got))
	assert.Equal(t, "first", got.Name, "losing create must not overwrite")
}

func TestMemoryStoreQueryChildEqual(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "logs/a", map[string]interface{}{"token": "abc", "n": 1}))
	require.NoError(t, s.Set(ctx, "logs/b", map[string]interface{}{"token": "xyz", "n": 2}))
	require.NoError(t, s.Set(ctx, "logs/c", map[string]interface{}{"token": "abc", "n": 3}))

	var matches map[string]json.RawMessage
	require.NoError(t, s.QueryChildEqual(ctx, "logs", "token", "abc", 1, &matches))
	assert.Len(t, matches, 1)

	require.NoError(t, s.QueryChildEqual(ctx, "logs", "token", "missing", 1, &matches))
	assert.Empty(t, matches)
}

func TestMemoryStoreServerTimestamp(t *testing.T) {
	s := NewMemoryStore()
	s.Now = func() int64 { return 1700000000000 }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "logs/a", map[string]interface{}{
		"createdAt": ServerTimestamp,
		"name":      "x",
	}))

	var got struct {
		CreatedAt int64  `json:"createdAt"`
		Name      string `json:"name"`
	}
	require.NoError(t, s.Get(ctx, "logs/a", &got))
	assert.Equal(t, int64(1700000000000), got.CreatedAt)
	assert.Equal(t, "x", got.Name)
}
