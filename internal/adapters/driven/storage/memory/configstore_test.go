package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legumeinfo/lis-search/internal/core/ports/driven"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var _ driven.ConfigStore = NewConfigStore()
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("api.endpoint", "https://graphql.lis.ncgr.org/"))
	require.NoError(t, store.Set("api.endpoint", "http://localhost:4000/"))

	val, ok := store.Get("api.endpoint")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:4000/", val)

	_, ok = store.Get("api.token")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	tests := []struct {
		name  string
		value any
		str   string
		num   int
		float float64
		flag  bool
	}{
		{"string", "Glycine", "Glycine", 0, 0, false},
		{"int", 10, "", 10, 10, false},
		{"int64 from TOML", int64(25), "", 25, 25, false},
		{"float64", 2.5, "", 2, 2.5, false},
		{"bool", true, "", 0, 0, true},
		{"nil", nil, "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			require.NoError(t, store.Set("key", tt.value))

			assert.Equal(t, tt.str, store.GetString("key"))
			assert.Equal(t, tt.num, store.GetInt("key"))
			assert.InDelta(t, tt.float, store.GetFloat("key"), 0.0001)
			assert.Equal(t, tt.flag, store.GetBool("key"))
		})
	}
}

func TestConfigStore_GetStringSlice(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("typed", []string{"identifier", "name"})
	_ = store.Set("toml", []any{"genus", 3, "species"})
	_ = store.Set("scalar", "genus")

	assert.Equal(t, []string{"identifier", "name"}, store.GetStringSlice("typed"))
	assert.Equal(t, []string{"genus", "species"}, store.GetStringSlice("toml"))
	assert.Nil(t, store.GetStringSlice("scalar"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_GetStringMap(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("search.genes.table_header", map[string]string{"identifier": "Identifier"})
	_ = store.Set("search.genes.table_header.name", "Name")
	_ = store.Set("search.genes.table_header.nested.deep", "ignored")
	_ = store.Set("search.traits.table_header", map[string]any{"name": "Trait", "count": 2})

	assert.Equal(t, map[string]string{"identifier": "Identifier", "name": "Name"},
		store.GetStringMap("search.genes.table_header"))
	assert.Equal(t, map[string]string{"name": "Trait"}, store.GetStringMap("search.traits.table_header"))
	assert.Nil(t, store.GetStringMap("search.genes.table_column_classes"))
}

func TestConfigStore_SaveAndLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("api.rate", 5.0)

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.InDelta(t, 5.0, store.GetFloat("api.rate"), 0.0001)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = store.Set("search.genes.page_size", id)
			_ = store.GetInt("search.genes.page_size")
			_ = store.GetStringMap("search.genes")
		}(i)
	}
	wg.Wait()
}
