package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/logging"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Клиент обслуживается с того же хоста или с dev-сервера
	},
}

// Message описывает сообщение WebSocket в обе стороны
type Message struct {
	Type  string          `json:"type"`            // snapshot | event | input
	Data  json.RawMessage `json:"data,omitempty"`  // Полезная нагрузка для клиента
	Input *entity.Input   `json:"input,omitempty"` // Намерение движения от клиента
}

// Client представляет подключенного зрителя или игрока
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub рассылает снимки и события всем подключенным клиентам
type Hub struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	onInput    func(entity.Input)
	done       chan struct{}
	mu         sync.RWMutex
	logger     *logging.Logger
}

// NewHub создает хаб. onInput вызывается для каждого сообщения input от клиента.
func NewHub(onInput func(entity.Input), logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.GetHubLogger()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		onInput:    onInput,
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run обрабатывает регистрацию/отключение клиентов и рассылку до отмены контекста.
// Вызывается один раз.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("🔌 Клиент подключен: %s", client.id)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Медленный клиент отключается
					close(client.send)
					delete(h.clients, id)
					h.logger.Warn("⚠️ Клиент %s не успевает читать, отключен", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.id]; ok {
		close(client.send)
		delete(h.clients, client.id)
		h.logger.Info("🔌 Клиент отключен: %s", client.id)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
}

// ClientCount возвращает число подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast ставит сообщение в очередь рассылки. При переполнении сообщение отбрасывается.
func (h *Hub) Broadcast(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("❌ Ошибка сериализации %s: %v", msgType, err)
		return
	}
	frame, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error("❌ Ошибка сериализации сообщения: %v", err)
		return
	}

	select {
	case h.broadcast <- frame:
	default:
	}
}

// HandleConnection обрабатывает новое WebSocket подключение
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("⚠️ Ошибка апгрейда соединения: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   uuid.NewString(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Запускаем горутины для чтения и записи
	go client.readPump()
	go client.writePump()
}

// readPump читает намерения движения от клиента
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("Соединение %s закрыто: %v", c.id, err)
			}
			return
		}

		if msg.Type == "input" && msg.Input != nil && c.hub.onInput != nil {
			c.hub.onInput(*msg.Input)
		}
	}
}

// writePump отправляет клиенту сообщения из очереди и пинги
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Хаб закрыл канал
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// httpHandler адаптирует хаб к http.Handler
func httpHandler(h *Hub) http.Handler {
	return http.HandlerFunc(h.HandleConnection)
}
