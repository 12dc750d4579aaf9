package chirp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/smazurov/pixynode/pkg/pixy"
)

// Transport dispatches an encoded command frame to the device service.
// It returns the device status and, when the status is non-negative,
// the return slots packed in order.
type Transport interface {
	Send(frame []byte) (status int32, reply []byte)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(frame []byte) (int32, []byte)

// Send calls f(frame).
func (f TransportFunc) Send(frame []byte) (int32, []byte) {
	return f(frame)
}

// Observer is notified after every dispatched command.
type Observer func(name string, status int32, elapsed time.Duration)

// Response is the outcome of a command.
// Values is nil whenever Status is negative.
type Response struct {
	Status int32
	Values []Value
}

// Value returns the i-th return value, or the zero Value when absent.
func (r Response) Value(i int) Value {
	if i < 0 || i >= len(r.Values) {
		return Value{}
	}
	return r.Values[i]
}

// Invoker builds command frames and dispatches them through a Transport.
// It performs no retries and holds no per-call state, so it is safe for
// concurrent use whenever the Transport is.
type Invoker struct {
	transport Transport
	observer  Observer
	logger    *slog.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithObserver registers a callback invoked after each dispatch.
func WithObserver(o Observer) Option {
	return func(c *Invoker) {
		c.observer = o
	}
}

// WithLogger sets the logger used for per-command debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Invoker) {
		c.logger = logger
	}
}

// NewInvoker creates an Invoker over t.
func NewInvoker(t Transport, opts ...Option) *Invoker {
	c := &Invoker{
		transport: t,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke calls the named command with args and decodes one value per return type.
//
// A negative device status yields a Response carrying only the status and a
// *pixy.StatusError; the return slots are left unread. A non-negative status
// is the command's success code and is returned even when no slots were requested.
func (c *Invoker) Invoke(name string, args []Value, returns ...Type) (Response, error) {
	frame := CommandFrame{Name: name, Args: args, Returns: returns}
	payload, err := frame.MarshalBinary()
	if err != nil {
		return Response{}, fmt.Errorf("encoding %q: %w", name, err)
	}

	start := time.Now()
	status, reply := c.transport.Send(payload)
	elapsed := time.Since(start)

	if c.observer != nil {
		c.observer(name, status, elapsed)
	}

	if status < 0 {
		c.logger.Debug("Command failed", "command", name, "status", status, "text", pixy.StatusText(status))
		return Response{Status: status}, &pixy.StatusError{Op: name, Code: status}
	}

	values, err := DecodeReply(reply, returns)
	if err != nil {
		return Response{Status: status}, fmt.Errorf("decoding %q reply: %w", name, err)
	}

	c.logger.Debug("Command completed", "command", name, "status", status, "elapsed", elapsed)
	return Response{Status: status, Values: values}, nil
}
