package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Sink delivers a formatted alert message somewhere.
type Sink interface {
	Send(ctx context.Context, text string) error
	Name() string
}

// ConsoleSink writes the plain-text form of each message to W.
type ConsoleSink struct {
	W  io.Writer
	mu sync.Mutex
}

// NewConsoleSink creates a ConsoleSink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink { return &ConsoleSink{W: w} }

func (c *ConsoleSink) Name() string { return "console" }

func (c *ConsoleSink) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.W, PlainText(text)); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}
