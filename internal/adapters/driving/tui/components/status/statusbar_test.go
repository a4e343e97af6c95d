package status

import (
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/keymap"
	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, domain.StateIdle, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_Init(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.NotNil(t, bar.Init())
}

func TestStatusBar_UpdateIgnoresKeys(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_UpdateTicks(t *testing.T) {
	bar := NewBar(nil, nil)

	_, cmd := bar.Update(spinner.TickMsg{ID: bar.spinner.ID()})

	assert.NotNil(t, cmd)
}

func TestSetSnapshot(t *testing.T) {
	bar := NewBar(nil, nil)

	SetSnapshot(bar, domain.Snapshot[string]{
		State:   domain.StateSuccess,
		Summary: "Showing results 1-2 of 2",
		Results: []string{"a", "b"},
	})

	assert.Equal(t, domain.StateSuccess, bar.State())
	assert.Equal(t, "Showing results 1-2 of 2", bar.Summary())
	assert.Contains(t, bar.View(), "Showing results 1-2 of 2")
}

func TestStatusBar_ErrorView(t *testing.T) {
	bar := NewBar(nil, nil)

	SetSnapshot(bar, domain.Snapshot[string]{State: domain.StateError, ErrorMessage: "bad field"})

	assert.Equal(t, "bad field", bar.Message())
	assert.Contains(t, bar.View(), "Error: bad field")
}

func TestStatusBar_StateViews(t *testing.T) {
	tests := []struct {
		state    domain.SearchState
		expected string
	}{
		{domain.StateIdle, "Ready"},
		{domain.StateLoading, "Searching..."},
		{domain.StateEmpty, "No results"},
		{domain.StateError, "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)

			SetSnapshot(bar, domain.Snapshot[string]{State: tt.state})

			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestStatusBar_NoticeClearedByLoading(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)
	bar.SetNotice("Downloaded to /tmp/x.tsv")

	assert.Contains(t, bar.View(), "Downloaded to /tmp/x.tsv")

	SetSnapshot(bar, domain.Snapshot[string]{State: domain.StateLoading})
	assert.Equal(t, "", bar.Notice())
}

func TestStatusBar_Hints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(300)

	assert.Contains(t, bar.View(), "search")

	bar.SetResultsFocused(true)
	assert.Contains(t, bar.View(), "next page")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetMessage("oops")
	bar.SetNotice("done")

	bar.Clear()

	assert.Equal(t, domain.StateIdle, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, "", bar.Notice())
}
