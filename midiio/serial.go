package midiio

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialTransport sends raw MIDI bytes over a serial link, for hardware
// synths reached through a serial-MIDI adapter rather than USB-MIDI.
type SerialTransport struct {
	port serial.Port
}

// OpenSerialTransport opens portName at baud and returns a transport
// ready for SendRaw.
func OpenSerialTransport(portName string, baud int) (*SerialTransport, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("midiio: open serial port %q: %w", portName, err)
	}
	return &SerialTransport{port: port}, nil
}

// SendRaw writes data verbatim to the serial port. Used for plain
// channel-voice bytes and already-framed SysEx messages.
func (s *SerialTransport) SendRaw(data []byte) error {
	_, err := s.port.Write(data)
	if err != nil {
		return fmt.Errorf("midiio: serial write: %w", err)
	}
	return nil
}

// SendChecksummed wraps data in a length-prefixed, XOR-checksummed frame
// before writing it, for serial links whose receiving firmware expects
// framing rather than bare MIDI bytes:
//
//	[0xF5][0xF6][len][data...][checksum]
//
// where checksum is the XOR of len and every data byte.
func (s *SerialTransport) SendChecksummed(data []byte) error {
	frame, err := buildChecksummedFrame(data)
	if err != nil {
		return err
	}
	return s.SendRaw(frame)
}

func buildChecksummedFrame(data []byte) ([]byte, error) {
	if len(data) > 255 {
		return nil, fmt.Errorf("midiio: checksummed frame payload too long: %d bytes", len(data))
	}
	frame := make([]byte, 0, len(data)+4)
	frame = append(frame, 0xF5, 0xF6, byte(len(data)))
	frame = append(frame, data...)

	checksum := byte(len(data))
	for _, b := range data {
		checksum ^= b
	}
	frame = append(frame, checksum)
	return frame, nil
}

// Close closes the underlying serial port.
func (s *SerialTransport) Close() error {
	return s.port.Close()
}
