package model

import (
	"errors"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrContextClosed is returned when a model is attached to a closed context.
var ErrContextClosed = errors.New("model: context closed")

// Context is the process-wide state of the animation engine. Create one at
// startup, pass it to every model constructor, and Close it at shutdown.
// Closing disposes every model still attached.
type Context struct {
	log    *zap.Logger
	models []io.Closer
	closed bool
}

// NewContext initializes the engine state.
func NewContext(log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("model context initialized")
	return &Context{log: log}
}

// Logger returns the engine logger for model implementations.
func (c *Context) Logger() *zap.Logger {
	return c.log
}

// Attach registers m so it is disposed with the context.
func (c *Context) Attach(m io.Closer) error {
	if c.closed {
		return ErrContextClosed
	}
	c.models = append(c.models, m)
	return nil
}

// Detach forgets m without closing it.
func (c *Context) Detach(m io.Closer) {
	for i, x := range c.models {
		if x == m {
			c.models = append(c.models[:i], c.models[i+1:]...)
			return
		}
	}
}

// Closed reports whether Close was called.
func (c *Context) Closed() bool {
	return c.closed
}

// Close disposes attached models and the engine state.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	models := c.models
	c.models = nil

	var err error
	for _, m := range models {
		err = multierr.Append(err, m.Close())
	}
	c.log.Debug("model context disposed")
	return err
}
