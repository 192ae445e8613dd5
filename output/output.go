package output

import (
	"fmt"

	"github.com/coreman2200/funtimes-legopi/model"
)

// Handle abstracts one physical transmission line (a controller or strip)
// serving one or more channels. Set* calls only stage values; nothing
// reaches the LEDs until Commit.
type Handle interface {
	// SetBrightness stages the brightness of channel index.
	SetBrightness(index int, v uint8)
	// SetColor fills the pixel buffer of channel index with c.
	SetColor(index int, c model.ColorVal)
	// Commit starts transmitting the staged frame.
	Commit() error
	// Wait blocks until the last committed frame has been sent.
	Wait() error
	// Close releases the transport.
	Close() error

	String() string
}

// TransportError reports a failed operation on a handle.
type TransportError struct {
	Handle string
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Handle, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Wrap returns nil when err is nil, otherwise a *TransportError.
func Wrap(h Handle, op string, err error) error {
	if err == nil {
		return nil
	}
	name := "<nil>"
	if h != nil {
		name = h.String()
	}
	return &TransportError{Handle: name, Op: op, Err: err}
}
