package push

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// subscriberQueueSize bounds each subscriber's send queue. A subscriber
// whose queue is full is disconnected, never blocked on.
const subscriberQueueSize = 64

// Message is the push envelope: {event, payload}.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Topic builders. Subscriptions are keyed by entity id.

func ShipmentTopic(shipmentID string) string { return "shipment:" + shipmentID }
func OrderTopic(orderID string) string       { return "order:" + orderID }
func ShipperTopic(shipperID string) string   { return "shipper:" + shipperID }

// Push event names.
const (
	EventShipperLocation = "shipper:location"
	EventShipmentStatus  = "shipment:status"
	EventOrderStatus     = "order:status"
)

type subscriber struct {
	conn  *websocket.Conn
	queue chan []byte
	done  chan struct{}
	once  sync.Once
}

// close signals shutdown; the queue channel itself is never closed so a
// racing Publish can never panic on it.
func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Hub is the in-process fan-out for ephemeral events. It holds a broadcast
// map keyed by topic; publishing never blocks the publisher.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
	logger *zap.Logger

	upgrader websocket.Upgrader
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*subscriber]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve upgrades an HTTP request and subscribes the connection to the
// given topics until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topics []string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		conn:  conn,
		queue: make(chan []byte, subscriberQueueSize),
		done:  make(chan struct{}),
	}
	h.subscribe(sub, topics)

	go h.writeLoop(sub, topics)
	go h.readLoop(sub, topics)
	return nil
}

// Publish fans a message out to every subscriber of a topic. Subscribers
// with a full queue are dropped; the slowest consumer never stalls the
// rest.
func (h *Hub) Publish(topic string, msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to encode push message",
			zap.String("event", msg.Event),
			zap.Error(err))
		return
	}

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.topics[topic]))
	for s := range h.topics[topic] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.queue <- raw:
		default:
			h.logger.Debug("dropping slow push subscriber", zap.String("topic", topic))
			h.drop(s)
		}
	}
}

// Subscribers reports the live subscriber count for a topic
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) subscribe(s *subscriber, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		if h.topics[t] == nil {
			h.topics[t] = make(map[*subscriber]struct{})
		}
		h.topics[t][s] = struct{}{}
	}
}

func (h *Hub) unsubscribe(s *subscriber, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range topics {
		delete(h.topics[t], s)
		if len(h.topics[t]) == 0 {
			delete(h.topics, t)
		}
	}
}

func (h *Hub) drop(s *subscriber) {
	h.mu.Lock()
	for t, subs := range h.topics {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, t)
		}
	}
	h.mu.Unlock()
	s.close()
}

func (h *Hub) writeLoop(s *subscriber, topics []string) {
	for {
		select {
		case <-s.done:
			return
		case raw := <-s.queue:
			if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				h.unsubscribe(s, topics)
				s.close()
				return
			}
		}
	}
}

// readLoop drains client frames so pings are answered and disconnects are
// noticed.
func (h *Hub) readLoop(s *subscriber, topics []string) {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			h.unsubscribe(s, topics)
			s.close()
			return
		}
	}
}
