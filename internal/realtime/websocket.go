package realtime

import (
	"net/http"
	"sync"
	"time"

	"mpay-order-api/internal/logger"

	"github.com/gorilla/websocket"
)

// wsSession gorilla 连接同一时间只允许一个写者
type wsSession struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func (s *wsSession) Send(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *wsSession) Close() error {
	return s.conn.Close()
}

// Hub 收银台 websocket 入口
type Hub struct {
	pusher       *Pusher
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

func NewHub(pusher *Pusher, writeTimeout time.Duration) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Hub{
		pusher:       pusher,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 收银台页面和接口可能不同域
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeOrder 升级连接并登记到 orderId，连接断开时注销；onOpen 在登记后调用，可用于补推已完成的结果
func (h *Hub) ServeOrder(w http.ResponseWriter, r *http.Request, orderID string, onOpen func()) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L.Warnf("[WS] upgrade failed orderId=%s: %v", orderID, err)
		return
	}
	s := &wsSession{conn: conn, writeTimeout: h.writeTimeout}
	reg := h.pusher.Registry()
	if old := reg.Add(orderID, s); old != nil {
		_ = old.Close()
	}
	logger.L.Infof("[WS] 连接建立 orderId=%s online=%d", orderID, reg.Len())

	defer func() {
		reg.Remove(orderID, s)
		_ = s.Close()
		logger.L.Infof("[WS] 连接关闭 orderId=%s online=%d", orderID, reg.Len())
	}()

	if onOpen != nil {
		onOpen()
	}

	// 浏览器只会发心跳，读到错误即认为断开
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt == websocket.TextMessage && string(data) == "ping" {
			if err := s.Send([]byte("pong")); err != nil {
				return
			}
		}
	}
}
