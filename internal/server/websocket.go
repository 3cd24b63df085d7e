package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"soba-backend/internal/domain"
	"soba-backend/internal/realtime"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadLimit    = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Price data is public; browsers from any origin may subscribe.
		return true
	},
}

// priceTickMessage is the wire shape of one price stream update.
type priceTickMessage struct {
	Mint           string  `json:"mint"`
	Price          float64 `json:"price"`
	PriceChange24h float64 `json:"priceChange24h"`
	Volume24h      float64 `json:"volume24h"`
	Timestamp      int64   `json:"timestamp"`
}

// wsSubscriber adapts a websocket connection to the hub's Subscriber
// interface. Writes are serialized; gorilla connections allow only one
// concurrent writer.
type wsSubscriber struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

var _ realtime.Subscriber = (*wsSubscriber)(nil)

func newWSSubscriber(conn *websocket.Conn) *wsSubscriber {
	return &wsSubscriber{conn: conn}
}

func (s *wsSubscriber) Send(tick *domain.PriceTick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteJSON(priceTickMessage{
		Mint:           tick.Mint,
		Price:          tick.Price,
		PriceChange24h: tick.PriceChange24h,
		Volume24h:      tick.Volume24h,
		Timestamp:      tick.Timestamp,
	})
}

func (s *wsSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

// handlePriceStream upgrades the connection and subscribes it to the price
// fan-out for the requested mint. The read loop exists to detect client
// disconnects; inbound payloads are ignored.
func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	if !s.checkToken(w, r) {
		return
	}
	mint := r.PathValue("tokenAddress")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("Error upgrading price stream connection: %v", err)
		return
	}

	sub := newWSSubscriber(conn)
	s.hub.Register(mint, sub)
	s.logger.Printf("Price stream subscriber connected for %s", mint)

	conn.SetReadLimit(wsReadLimit)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unregister(mint, sub)
	s.logger.Printf("Price stream subscriber disconnected for %s", mint)
}
