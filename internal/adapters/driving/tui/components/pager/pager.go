// Package pager renders the pagination control of a result table.
package pager

import (
	"fmt"
	"strings"

	"github.com/legumeinfo/lis-search/internal/adapters/driving/tui/styles"
	"github.com/legumeinfo/lis-search/internal/core/domain"
)

// Pager shows the current page and which directions are available.
type Pager struct {
	state  domain.PageState
	styles *styles.Styles
}

// New creates a pager on page 1.
func New(s *styles.Styles) *Pager {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Pager{state: domain.PageState{Page: 1}, styles: s}
}

// SetState replaces the page state.
func (p *Pager) SetState(state domain.PageState) {
	p.state = state
}

// State returns the page state.
func (p *Pager) State() domain.PageState {
	return p.state
}

// View renders "‹ prev  Page 2 of 5  next ›". Unavailable directions
// are muted.
func (p *Pager) View() string {
	prev := p.styles.Muted.Render("‹ prev")
	if p.state.HasPrevious() {
		prev = p.styles.Pager.Render("‹ prev")
	}
	next := p.styles.Muted.Render("next ›")
	if p.state.HasNext {
		next = p.styles.Pager.Render("next ›")
	}
	return strings.Join([]string{prev, p.styles.Normal.Render(Label(p.state)), next}, "  ")
}

// Label describes the page state in words.
func Label(ps domain.PageState) string {
	switch {
	case ps.NumPages != nil:
		return fmt.Sprintf("Page %d of %d", ps.Page, *ps.NumPages)
	case ps.HasNext:
		return fmt.Sprintf("Page %d of many", ps.Page)
	default:
		return fmt.Sprintf("Page %d", ps.Page)
	}
}
