package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dmchugh/medlib/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

// ApplyPalette swaps the stylesheet for a server-provided color palette, as
// chosen in the user's preferences. Empty fields keep the defaults.
func ApplyPalette(p *models.ColorPalette) {
	if p == nil {
		return
	}
	if p.Primary != "" {
		styles.title = NewBold(p.Primary).MarginBottom(1)
	}
	if p.Success != "" {
		styles.ok = NewBold(p.Success)
	}
	if p.Error != "" {
		styles.err = NewBold(p.Error)
	}
	if p.Warning != "" {
		styles.warn = NewStyle(p.Warning)
	}
	if p.TextSecondary != "" {
		styles.help = NewEm(p.TextSecondary)
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
