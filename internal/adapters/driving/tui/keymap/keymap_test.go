package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"ctrl+c"}},
		{"search", km.Search, []string{"enter"}},
		{"next field", km.NextField, []string{"tab"}},
		{"prev field", km.PrevField, []string{"shift+tab"}},
		{"next page", km.NextPage, []string{"n", "pgdown"}},
		{"prev page", km.PrevPage, []string{"p", "pgup"}},
		{"history back", km.HistoryBack, []string{"["}},
		{"history forward", km.HistoryForward, []string{"]"}},
		{"reset", km.Reset, []string{"ctrl+r"}},
		{"download", km.Download, []string{"ctrl+d"}},
		{"switch kind", km.SwitchKind, []string{"ctrl+t"}},
		{"settings", km.Settings, []string{"ctrl+s"}},
		{"back", km.Back, []string{"esc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range tt.keys {
				assert.Contains(t, tt.binding.Keys(), k)
			}
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 4)
	assert.Equal(t, km.Quit.Keys(), help[3].Keys())
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	require.Len(t, groups, 4)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestKeyMap_ContextHelp(t *testing.T) {
	km := DefaultKeyMap()

	assert.NotEmpty(t, km.FormHelp())
	assert.NotEmpty(t, km.ResultsHelp())
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("n", km.NextPage))
	assert.True(t, Matches("pgdown", km.NextPage))
	assert.False(t, Matches("x", km.NextPage))
	assert.False(t, Matches("", km.Quit))
}
