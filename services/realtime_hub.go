package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const socketWriteWait = 10 * time.Second

// Socket is one live websocket of a user. gorilla allows a single
// concurrent writer, so every write goes through Write.
type Socket struct {
	UserID uint
	conn   *websocket.Conn
	wmu    sync.Mutex
}

func NewSocket(userID uint, conn *websocket.Conn) *Socket {
	return &Socket{UserID: userID, conn: conn}
}

func (s *Socket) Write(messageType int, data []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	return s.conn.WriteMessage(messageType, data)
}

// RealtimeHub indexes sockets by user id. A user may hold several.
type RealtimeHub struct {
	mu    sync.RWMutex
	users map[uint][]*Socket
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{users: make(map[uint][]*Socket)}
}

func (h *RealtimeHub) Attach(s *Socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[s.UserID] = append(h.users[s.UserID], s)
}

// Detach removes the socket and closes its connection.
func (h *RealtimeHub) Detach(s *Socket) {
	h.mu.Lock()
	socks := h.users[s.UserID]
	for i, cur := range socks {
		if cur == s {
			socks = append(socks[:i], socks[i+1:]...)
			break
		}
	}
	if len(socks) == 0 {
		delete(h.users, s.UserID)
	} else {
		h.users[s.UserID] = socks
	}
	h.mu.Unlock()
	_ = s.conn.Close()
}

func (h *RealtimeHub) Online(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Broadcast writes payload as JSON to every socket of userID. Write
// failures are left to the read loop, which detaches dead sockets.
func (h *RealtimeHub) Broadcast(userID uint, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	socks := append([]*Socket(nil), h.users[userID]...)
	h.mu.RUnlock()
	for _, s := range socks {
		_ = s.Write(websocket.TextMessage, msg)
	}
}
