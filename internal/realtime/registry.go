package realtime

import "sync"

// Session 一个已订阅订单的浏览器连接
type Session interface {
	Send(msg []byte) error
	Close() error
}

// Registry orderId -> 当前连接，一个订单只保留最新的一个连接
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Add 登记连接，返回被顶掉的旧连接（由调用方关闭）
func (r *Registry) Add(orderID string, s Session) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.sessions[orderID]
	r.sessions[orderID] = s
	if old == s {
		return nil
	}
	return old
}

// Remove 只有登记的还是这个连接时才删除，避免旧连接关闭时把新连接删掉
func (r *Registry) Remove(orderID string, s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[orderID]; ok && cur == s {
		delete(r.sessions, orderID)
		return true
	}
	return false
}

func (r *Registry) Lookup(orderID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[orderID]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
