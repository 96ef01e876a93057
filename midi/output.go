package midi

import (
	"fmt"

	"go-playalong/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// OutputConnection sends song and live events to a MIDI output port
type OutputConnection struct {
	name string
	send func(gomidi.Message) error
}

// NewOutputConnection wraps an already opened sender
func NewOutputConnection(name string, send func(gomidi.Message) error) *OutputConnection {
	return &OutputConnection{name: name, send: send}
}

// OpenOutput opens the output port whose name matches portName exactly
func OpenOutput(portName string) (*OutputConnection, error) {
	port, err := FindOutPort(portName)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", portName, err)
	}
	debug.Log("output", "opened %s", portName)
	return NewOutputConnection(portName, send), nil
}

func (o *OutputConnection) Name() string {
	return o.name
}

// MidiEvent sends msg on channel. Channel messages are rewritten to the given channel.
func (o *OutputConnection) MidiEvent(channel uint8, msg gomidi.Message) {
	o.write(withChannel(channel, msg))
}

// StopAll releases sustain and silences every note on all channels
func (o *OutputConnection) StopAll() {
	for ch := uint8(0); ch < NumChannels; ch++ {
		for _, msg := range SilenceChannel(ch) {
			o.write(msg)
		}
	}
}

func (o *OutputConnection) write(msg gomidi.Message) {
	if o.send == nil {
		return
	}
	if err := o.send(msg); err != nil {
		debug.LogEvery(50, "output", "send to %s failed: %v", o.name, err)
	}
}

// withChannel returns msg with its status nibble set to channel
func withChannel(channel uint8, msg gomidi.Message) gomidi.Message {
	var current uint8
	if len(msg) == 0 || !msg.GetChannel(&current) || current == channel&0x0F {
		return msg
	}
	out := make(gomidi.Message, len(msg))
	copy(out, msg)
	out[0] = out[0]&0xF0 | channel&0x0F
	return out
}

// DummyOutput discards everything. Used when no output port is configured.
type DummyOutput struct{}

func (DummyOutput) MidiEvent(channel uint8, msg gomidi.Message) {}
func (DummyOutput) StopAll()                                    {}
