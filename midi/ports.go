package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortScanTimeout bounds port enumeration (CoreMIDI can hang)
const PortScanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the driver does not answer within PortScanTimeout
var ErrScanTimeout = errors.New("midi port scan timed out (try: sudo killall coreaudiod midiserver)")

// Ports is a snapshot of the available MIDI ports
type Ports struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// InNames returns the input port names
func (p Ports) InNames() []string {
	names := make([]string, len(p.Ins))
	for i, in := range p.Ins {
		names[i] = in.String()
	}
	return names
}

// OutNames returns the output port names
func (p Ports) OutNames() []string {
	names := make([]string, len(p.Outs))
	for i, out := range p.Outs {
		names[i] = out.String()
	}
	return names
}

// ScanPorts lists MIDI ports with a timeout
func ScanPorts(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrScanTimeout
	}
}

// FindOutPort returns the output port named portName
func FindOutPort(portName string) (drivers.Out, error) {
	ports, err := ScanPorts(PortScanTimeout)
	if err != nil {
		return nil, err
	}
	for _, port := range ports.Outs {
		if port.String() == portName {
			return port, nil
		}
	}
	return nil, fmt.Errorf("output port %q not found", portName)
}

// MatchPort reports whether a port name matches a configured pattern (case-insensitive substring)
func MatchPort(name, pattern string) bool {
	if pattern == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

// CloseDriver releases the registered MIDI driver (the binary registers rtmididrv)
func CloseDriver() {
	gomidi.CloseDriver()
}
