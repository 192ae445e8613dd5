package fake

import (
	"sync"

	"github.com/coreman2200/funtimes-legopi/model"
)

// Handle records everything staged and committed to it. It backs the "sim"
// driver and the loop tests.
type Handle struct {
	Name string

	// Inject failures. CommitErr is returned once FailAfter commits have
	// succeeded.
	CommitErr error
	FailAfter int
	WaitErr   error

	// Keep bounds the retained frames for long runs; 0 keeps all.
	Keep int

	mu         sync.Mutex
	brightness map[int]uint8
	colors     map[int]model.ColorVal
	frames     []Frame
	commits    int
	waits      int
	closed     bool
}

// Frame is the brightness of every channel at the time of a commit.
type Frame map[int]uint8

func New(name string) *Handle {
	return &Handle{
		Name:       name,
		brightness: map[int]uint8{},
		colors:     map[int]model.ColorVal{},
	}
}

func (h *Handle) String() string { return h.Name }

func (h *Handle) SetBrightness(index int, v uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.brightness[index] = v
}

func (h *Handle) SetColor(index int, c model.ColorVal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors[index] = c
}

func (h *Handle) Commit() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commits++
	if h.CommitErr != nil && h.commits > h.FailAfter {
		return h.CommitErr
	}
	f := Frame{}
	for k, v := range h.brightness {
		f[k] = v
	}
	h.frames = append(h.frames, f)
	if h.Keep > 0 && len(h.frames) > h.Keep {
		h.frames = append(h.frames[:0], h.frames[len(h.frames)-h.Keep:]...)
	}
	return nil
}

func (h *Handle) Wait() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.waits++
	return h.WaitErr
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *Handle) Commits() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.commits
}

func (h *Handle) Waits() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.waits
}

func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Frames returns successful commits in order.
func (h *Handle) Frames() []Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Frame, len(h.frames))
	copy(out, h.frames)
	return out
}

// Last is the most recent committed frame, or nil.
func (h *Handle) Last() Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.frames) == 0 {
		return nil
	}
	return h.frames[len(h.frames)-1]
}

func (h *Handle) Color(index int) (model.ColorVal, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.colors[index]
	return c, ok
}
