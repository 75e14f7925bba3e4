package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub maintains the set of active clients and pushes notifications to them.
// A user may hold several connections (one per open tab).
type Hub struct {
	mu sync.RWMutex
	// Registered clients grouped by UserID.
	clients map[uint]map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// 在 Run 退出后关闭
	done chan struct{}

	// 读写协程计数，Wait 用
	pumps sync.WaitGroup

	log *zap.Logger
}

// NewHub creates a new Hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
	}
}

// Run 处理注册和注销请求，直到 ctx 取消。退出时关闭所有连接。
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("websocket hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			conns, ok := h.clients[client.UserID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.clients[client.UserID] = conns
			}
			conns[client] = struct{}{}
			count := len(conns)
			h.mu.Unlock()
			h.log.Debug("client registered", zap.Uint("userId", client.UserID), zap.Int("connections", count))

		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.removeLocked(client)
			h.mu.Unlock()
			if removed {
				h.log.Debug("client unregistered", zap.Uint("userId", client.UserID))
			}

		case <-ctx.Done():
			h.mu.Lock()
			for _, conns := range h.clients {
				for client := range conns {
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
			h.log.Info("websocket hub stopped")
			close(h.done)
			return
		}
	}
}

// Wait 阻塞直到 Run 退出且所有连接的读写协程结束。
func (h *Hub) Wait() {
	<-h.done
	h.pumps.Wait()
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// removeLocked 删除 client 并关闭其发送通道。重复调用是安全的。
func (h *Hub) removeLocked(client *Client) bool {
	conns, ok := h.clients[client.UserID]
	if !ok {
		return false
	}
	if _, ok := conns[client]; !ok {
		return false
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.send)
	return true
}

// SendToUser 把 payload 推送给 userID 的所有连接，返回该用户是否在线。
// 发送缓冲区已满的连接会被断开。
func (h *Hub) SendToUser(userID uint, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.clients[userID]
	if !ok {
		return false
	}
	for client := range conns {
		select {
		case client.send <- payload:
		default:
			h.log.Warn("client send buffer full, dropping connection", zap.Uint("userId", userID))
			select {
			case h.unregister <- client:
			default:
				go h.leave(client)
			}
		}
	}
	return true
}

// ConnectionCount 返回 userID 当前的连接数。
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
