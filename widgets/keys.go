package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyState is what the strip shows for one key
type KeyState int

const (
	KeyIdle KeyState = iota
	KeyRequired
	KeyPending
)

// KeyStrip renders one cell per key from Start to End
type KeyStrip struct {
	Start, End uint8
	Glyphs     map[KeyState]rune
	Styles     map[KeyState]lipgloss.Style
}

// Render draws the strip. Keys not in states are idle.
func (k KeyStrip) Render(states map[uint8]KeyState) string {
	var out strings.Builder
	for note := int(k.Start); note <= int(k.End); note++ {
		state := states[uint8(note)]
		glyph, ok := k.Glyphs[state]
		if !ok {
			glyph = ' '
		}
		cell := string(glyph)
		if style, ok := k.Styles[state]; ok {
			cell = style.Render(cell)
		}
		out.WriteString(cell)
	}
	return out.String()
}

// ProgressBar renders a horizontal bar of width cells filled to percentage
type ProgressBar struct {
	Width               int
	Filled, Empty, Head rune
}

func (b ProgressBar) Render(percentage float64) string {
	if b.Width <= 0 {
		return ""
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 1 {
		percentage = 1
	}
	pos := int(percentage * float64(b.Width-1))

	var out strings.Builder
	for i := 0; i < b.Width; i++ {
		switch {
		case i < pos:
			out.WriteRune(b.Filled)
		case i == pos:
			out.WriteRune(b.Head)
		default:
			out.WriteRune(b.Empty)
		}
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
