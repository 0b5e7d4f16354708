package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// QuoteSource is the part of the tracker the hub polls.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
}

// quoteEvent is the envelope pushed to WebSocket clients.
type quoteEvent struct {
	Type          string    `json:"type"`
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	PrevClose     float64   `json:"prev_close"`
	ChangePercent *float64  `json:"change_percent"`
	Time          time.Time `json:"time"`
}

// Hub polls the quote source for one symbol and fans the result out to all
// connected WebSocket clients. Run must be started before clients connect.
type Hub struct {
	Source       QuoteSource
	Symbol       string
	PollInterval time.Duration

	mu         sync.RWMutex
	clients    map[*client]bool
	last       []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
}

// NewHub creates a hub streaming quotes for one symbol.
func NewHub(source QuoteSource, symbol string) *Hub {
	return &Hub{
		Source:       source,
		Symbol:       symbol,
		PollInterval: 15 * time.Second,
		clients:      make(map[*client]bool),
		register:     make(chan *client),
		unregister:   make(chan *client),
		done:         make(chan struct{}),
	}
}

// Run owns the client set and the poll ticker. Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.PollInterval)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			last := h.last
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[INFO] ws client connected (%d total)", count)
			if last != nil {
				select {
				case c.send <- last:
				default:
				}
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[INFO] ws client disconnected (%d total)", count)

		case <-ticker.C:
			h.poll(ctx)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) poll(ctx context.Context) {
	if h.ClientCount() == 0 {
		return
	}

	qctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	q, err := h.Source.Quote(qctx, h.Symbol)
	cancel()
	if err != nil {
		log.Printf("[WARN] hub quote poll %s: %v", h.Symbol, err)
		return
	}
	if math.IsNaN(q.Price) {
		return
	}

	change := math.NaN()
	if q.PrevClose != 0 {
		change = (q.Price - q.PrevClose) / q.PrevClose
	}
	msg, err := json.Marshal(quoteEvent{
		Type:          "quote",
		Symbol:        q.Symbol,
		Price:         q.Price,
		PrevClose:     q.PrevClose,
		ChangePercent: fptr(change),
		Time:          q.Time,
	})
	if err != nil {
		log.Printf("[WARN] hub encode quote: %v", err)
		return
	}

	h.mu.Lock()
	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// HandleWS upgrades the connection and registers the client with the hub.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WARN] ws upgrade: %v", err)
		return
	}

	cl := &client{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go cl.writePump()
	go cl.readPump()
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; the stream is push-only. It exists to
// answer pings and to notice the peer going away.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
