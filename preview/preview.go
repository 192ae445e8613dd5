// Package preview mirrors committed frames to websocket viewers. It is
// read-only: anything a viewer sends is discarded.
package preview

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-legopi/model"
	"github.com/coreman2200/funtimes-legopi/output"
)

const (
	writeWait    = 200 * time.Millisecond
	clientBuffer = 4 // frames queued per viewer before dropping
)

// ChannelFrame is one channel's state in a broadcast frame.
type ChannelFrame struct {
	Index      int    `json:"index"`
	Brightness uint8  `json:"brightness"`
	Color      string `json:"color"` // #RRGGBB after brightness
	White      uint8  `json:"white"`
}

type Frame struct {
	T        int64          `json:"t"`
	FrameID  uint64         `json:"frame_id"`
	Handle   string         `json:"handle"`
	Channels []ChannelFrame `json:"channels"`
}

// Hub fans frames out to every connected viewer.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*websocket.Conn]chan []byte
	frameID   uint64
	dropped   uint64
	startTime time.Time
	log       zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:   map[*websocket.Conn]chan []byte{},
		startTime: time.Now(),
		log:       log.Logger,
	}
}

func (h *Hub) WithLogger(lg zerolog.Logger) *Hub {
	h.log = lg
	return h
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	out := make(chan []byte, clientBuffer)
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("preview viewer connected")

	// writer: a failed write closes the conn, which ends the reader
	go func() {
		for b := range out {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.log.Debug().Err(err).Msg("write frame")
				conn.Close()
			}
		}
	}()

	// reader: discards input and owns removal
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			close(out)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"viewers":  len(h.clients),
		"dropped":  h.dropped,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Viewers is the number of connected clients.
func (h *Hub) Viewers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast queues f for every viewer without blocking.
func (h *Hub) broadcast(f Frame) {
	h.mu.Lock()
	h.frameID++
	f.FrameID = h.frameID
	h.mu.Unlock()

	b, err := json.Marshal(f)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, out := range h.clients {
		select {
		case out <- b:
		default:
			h.dropped++
		}
	}
}

// Dropped counts frames skipped because a viewer's queue was full.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Mirror wraps next so that every successful Commit is also broadcast.
func (h *Hub) Mirror(next output.Handle) output.Handle {
	return &mirror{
		Handle:     next,
		hub:        h,
		brightness: map[int]uint8{},
		colors:     map[int]model.ColorVal{},
	}
}

type mirror struct {
	output.Handle
	hub *Hub

	mu         sync.Mutex
	brightness map[int]uint8
	colors     map[int]model.ColorVal
}

func (m *mirror) SetBrightness(index int, v uint8) {
	m.mu.Lock()
	m.brightness[index] = v
	m.mu.Unlock()
	m.Handle.SetBrightness(index, v)
}

func (m *mirror) SetColor(index int, c model.ColorVal) {
	m.mu.Lock()
	m.colors[index] = c
	m.mu.Unlock()
	m.Handle.SetColor(index, c)
}

func (m *mirror) Commit() error {
	if err := m.Handle.Commit(); err != nil {
		return err
	}
	if m.hub.Viewers() == 0 {
		return nil
	}
	m.hub.broadcast(m.frame())
	return nil
}

func (m *mirror) frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := make([]int, 0, len(m.colors))
	for i := range m.colors {
		idx = append(idx, i)
	}
	for i := range m.brightness {
		if _, ok := m.colors[i]; !ok {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)

	f := Frame{T: time.Now().UnixNano(), Handle: m.Handle.String()}
	for _, i := range idx {
		b := m.brightness[i]
		c := m.colors[i].Scale(b)
		f.Channels = append(f.Channels, ChannelFrame{
			Index:      i,
			Brightness: b,
			Color:      hex(c),
			White:      c.GetW(),
		})
	}
	return f
}

func hex(c model.ColorVal) string {
	return colorful.Color{
		R: float64(c.GetR()) / 255.0,
		G: float64(c.GetG()) / 255.0,
		B: float64(c.GetB()) / 255.0,
	}.Hex()
}
