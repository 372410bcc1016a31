package audio

import (
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

// Sender delivers MIDI messages to whatever is listening: a device port, a
// soft synth, or a test collector.
type Sender interface {
	Send(msg midi.Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(msg midi.Message) error

func (f SenderFunc) Send(msg midi.Message) error {
	return f(msg)
}

// Collector is a Sender that records every message, in send order.
type Collector struct {
	mu       sync.Mutex
	messages []midi.Message
}

func (c *Collector) Send(msg midi.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *Collector) Messages() []midi.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]midi.Message(nil), c.messages...)
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
