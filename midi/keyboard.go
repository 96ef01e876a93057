package midi

import (
	"fmt"
	"sync"

	"go-playalong/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	mu       sync.Mutex
	closed   bool
	noteChan chan NoteEvent
}

// NewKeyboardController creates a keyboard controller (input only)
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		inPort:   inPort,
		noteChan: make(chan NoteEvent, 64),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var channel uint8
			note, on, ok := NoteState(msg)
			if !ok {
				return
			}
			msg.GetChannel(&channel)
			var velocity uint8
			if on {
				msg.GetNoteOn(&channel, &note, &velocity)
			}
			kb.push(NoteEvent{Note: note, Velocity: velocity, Channel: channel, On: on})
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
		debug.Log("input", "listening on %s", id)
	}

	return kb, nil
}

// push delivers without blocking the driver callback; events are dropped when the reader lags
func (kb *KeyboardController) push(evt NoteEvent) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.noteChan <- evt:
	default:
		debug.LogEvery(10, "input", "dropped note event from %s", kb.id)
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// Close stops listening and closes NoteEvents. A driver callback still in
// flight after stop is dropped.
func (kb *KeyboardController) Close() error {
	kb.mu.Lock()
	if kb.closed {
		kb.mu.Unlock()
		return nil
	}
	kb.closed = true
	close(kb.noteChan)
	kb.mu.Unlock()

	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	return nil
}
