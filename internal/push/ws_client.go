package push

import (
	"encoding/json"
	"log"
	"time"

	"nagarseva/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WebSocketClient is the websocket-backed push connection for one reporter.
type WebSocketClient struct {
	ReporterID string
	Conn       *websocket.Conn
	Hub        *Hub
	Send       chan models.Notification
}

// NewWebSocketClient wraps an upgraded connection for the hub.
func NewWebSocketClient(reporterID string, conn *websocket.Conn, hub *Hub) *WebSocketClient {
	return &WebSocketClient{
		ReporterID: reporterID,
		Conn:       conn,
		Hub:        hub,
		Send:       make(chan models.Notification, 8),
	}
}

func (c *WebSocketClient) GetReporterID() string                      { return c.ReporterID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Notification { return c.Send }

// Run starts the pumps. The read pump only watches for the peer closing.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump drains control frames and unregisters the client when the peer
// goes away. Reporters never send application data on this socket.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading from push client %s: %v", c.ReporterID, err)
			}
			break
		}
	}
}

// writePump reads notifications from Send and writes them to the socket.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case n, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(n)
			if err != nil {
				log.Printf("Error encoding notification for reporter %s: %v", c.ReporterID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
