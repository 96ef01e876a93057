package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-playalong/debug"
	"go-playalong/midi"
	"go-playalong/player"
	"go-playalong/theme"
	"go-playalong/widgets"
)

// FrameRate is how often the player is advanced
const FrameRate = 60

// Seek steps for the arrow keys
const (
	seekStepMs     = 5000
	seekFineStepMs = 1000
)

type Model struct {
	Player    *player.Player
	DeviceMgr *midi.DeviceManager // nil when no input is configured
	Theme     *theme.Theme

	// WaitMode holds the song until the performer has played every required note
	WaitMode bool

	OutputName string // shown in the header, empty when silent

	notes      chan midi.NoteEvent
	lastFrame  time.Time
	controller string // id of the connected keyboard
	quitting   bool
}

// FrameMsg advances the player by the time since the previous frame
type FrameMsg time.Time

// NoteMsg is a key press or release from the performer
type NoteMsg midi.NoteEvent

type DeviceEventMsg midi.DeviceEvent

func NewModel(p *player.Player, deviceMgr *midi.DeviceManager, th *theme.Theme, waitMode bool) Model {
	return Model{
		Player:    p,
		DeviceMgr: deviceMgr,
		Theme:     th,
		WaitMode:  waitMode,
		notes:     make(chan midi.NoteEvent, 64),
	}
}

func nextFrame() tea.Cmd {
	return tea.Tick(time.Second/FrameRate, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func ListenForNotes(notes <-chan midi.NoteEvent) tea.Cmd {
	return func() tea.Msg {
		return NoteMsg(<-notes)
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{nextFrame(), ListenForNotes(m.notes)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case FrameMsg:
		now := time.Time(msg)
		var delta time.Duration
		if !m.lastFrame.IsZero() {
			delta = now.Sub(m.lastFrame)
		}
		m.lastFrame = now
		m.advance(delta)
		return m, nextFrame()

	case NoteMsg:
		m.Player.UserEvent(msg.Channel, noteMessage(midi.NoteEvent(msg)))
		return m, ListenForNotes(m.notes)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.controller = event.ID
			// Forward keyboard input into the update loop
			go func(c midi.Controller, notes chan<- midi.NoteEvent) {
				for evt := range c.NoteEvents() {
					notes <- evt
				}
			}(event.Controller, m.notes)
		case midi.DeviceDisconnected:
			if m.controller == event.ID {
				m.controller = ""
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// advance runs one player frame. In wait mode time stands still while notes are owed.
func (m Model) advance(delta time.Duration) {
	if m.WaitMode && !m.Player.PlayAlong().RequirementsSatisfied() {
		delta = 0
	}
	if events := m.Player.Update(delta); len(events) > 0 {
		debug.LogEvery(100, "frame", "t=%v events=%d", m.Player.Time(), len(events))
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case " ", "p":
		m.Player.TogglePause()

	case "left":
		m.Player.Rewind(-seekStepMs)

	case "right":
		m.Player.Rewind(seekStepMs)

	case ",":
		m.Player.Rewind(-seekFineStepMs)

	case ".":
		m.Player.Rewind(seekFineStepMs)

	case "home":
		m.Player.SetTime(0)

	case "w":
		m.WaitMode = !m.WaitMode

	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.Player.SetPercentageTime(float64(msg.String()[0]-'0') / 10)
	}
	return m, nil
}

func noteMessage(evt midi.NoteEvent) gomidi.Message {
	if evt.On {
		return gomidi.NoteOn(evt.Channel, evt.Note, evt.Velocity)
	}
	return gomidi.NoteOff(evt.Channel, evt.Note)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	p := m.Player
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	playState := "PLAY"
	switch {
	case p.IsFinished():
		playState = "END"
	case p.IsPaused():
		playState = "PAUSE"
	}
	status := ""
	if m.WaitMode {
		status += "  wait"
	}
	if m.OutputName != "" {
		status += "  out:" + m.OutputName
	}
	if m.controller != "" {
		status += "  in:" + m.controller
	}

	header := lipgloss.NewStyle().Foreground(m.Theme.FG()).Render(p.Song().Name) + "  " +
		lipgloss.NewStyle().Foreground(m.Theme.Active()).Bold(true).Render(playState) + "  " +
		headerStyle.Render(fmt.Sprintf("%s / %s%s",
			formatTime(p.TimeWithoutLeadIn()), formatTime(p.Song().Length()), status))

	sym := m.Theme.Symbols
	bar := widgets.ProgressBar{Width: 60, Filled: sym.BarFilled, Empty: sym.BarEmpty, Head: sym.BarHead}

	playAlong := p.PlayAlong()
	states := make(map[uint8]widgets.KeyState)
	for _, note := range playAlong.PendingPresses() {
		states[note] = widgets.KeyPending
	}
	for _, note := range playAlong.RequiredNotes() {
		states[note] = widgets.KeyRequired
	}
	kb := playAlong.Keyboard()
	strip := widgets.KeyStrip{
		Start: kb.Start,
		End:   kb.End,
		Glyphs: map[widgets.KeyState]rune{
			widgets.KeyIdle:     sym.KeyIdle,
			widgets.KeyRequired: sym.KeyRequired,
			widgets.KeyPending:  sym.KeyPending,
		},
		Styles: map[widgets.KeyState]lipgloss.Style{
			widgets.KeyIdle:     dimStyle,
			widgets.KeyRequired: lipgloss.NewStyle().Foreground(m.Theme.Warning()),
			widgets.KeyPending:  lipgloss.NewStyle().Foreground(m.Theme.Success()),
		},
	}

	help := dimStyle.Render(widgets.RenderKeyHelp(helpSections))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(bar.Render(p.Percentage()))
	out.WriteString("\n\n")
	out.WriteString(strip.Render(states))
	out.WriteString("\n\n")
	out.WriteString(help)
	return out.String()
}

var helpSections = []widgets.KeySection{
	{
		Title: "Playback",
		Keys: []widgets.KeyBinding{
			{Key: "space, p", Desc: "pause / resume"},
			{Key: "←/→", Desc: "seek 5s"},
			{Key: ",/.", Desc: "seek 1s"},
			{Key: "0-9", Desc: "jump to 0%-90%"},
			{Key: "home", Desc: "back to start"},
			{Key: "q", Desc: "quit"},
		},
	},
	{
		Title: "Practice",
		Keys: []widgets.KeyBinding{
			{Key: "w", Desc: "wait for required notes"},
		},
	},
}

// formatTime renders d as m:ss, with a leading minus during the lead-in
func formatTime(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%s%d:%02d", sign, secs/60, secs%60)
}
