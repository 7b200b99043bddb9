package server

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/support-chat/internal/stats"
	"go.uber.org/zap"
)

// Notifier tracks at most one live connection per participant and
// pushes best-effort notifications to it. Registering a participant
// again silently replaces the previous connection.
type Notifier struct {
	log     *zap.Logger
	stats   stats.StatsProvider
	mu      sync.RWMutex
	conns   map[string]*Client
	clients map[*Client]struct{}
	wg      sync.WaitGroup
}

func NewNotifier(logger *zap.Logger, su stats.StatsProvider) *Notifier {
	su.RegisterMetric(stats.NumActiveConnections)
	su.RegisterMetric(stats.NumPushesDelivered)
	su.RegisterMetric(stats.NumPushesMissed)

	return &Notifier{
		log:     logger,
		stats:   su,
		conns:   make(map[string]*Client),
		clients: make(map[*Client]struct{}),
	}
}

// Serve starts the read and write loops for an upgraded connection.
// When verifiedUid is non-empty, auth frames for any other participant
// are rejected.
func (n *Notifier) Serve(conn *websocket.Conn, verifiedUid string) *Client {
	c := NewClient(conn, n, n.log, verifiedUid)
	n.addClient(c)

	n.wg.Add(2)
	go func() {
		defer n.wg.Done()
		c.Write()
	}()
	go func() {
		defer n.wg.Done()
		c.Read()
	}()

	return c
}

func (n *Notifier) Register(uid string, c *Client) {
	n.mu.Lock()
	prev := n.conns[uid]
	n.conns[uid] = c
	n.mu.Unlock()

	if prev != nil && prev != c {
		n.log.Debug("replaced connection",
			zap.String("uid", uid),
			zap.String("old_conn_id", prev.id),
			zap.String("conn_id", c.id),
		)
	}
	n.log.Info("registered connection", zap.String("uid", uid), zap.String("conn_id", c.id))
}

// Unregister removes uid's entry only if it still points at c, so a
// replaced connection closing late cannot evict its successor.
func (n *Notifier) Unregister(uid string, c *Client) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if cur, ok := n.conns[uid]; ok && cur == c {
		delete(n.conns, uid)
		n.log.Info("unregistered connection", zap.String("uid", uid), zap.String("conn_id", c.id))
		return true
	}

	return false
}

// Push queues msg on uid's connection. The result only reports whether
// a live connection accepted the frame, not whether the client read it.
func (n *Notifier) Push(uid string, msg *ServerMessage) bool {
	n.mu.RLock()
	c, ok := n.conns[uid]
	n.mu.RUnlock()

	if !ok || !c.queueMessage(msg) {
		n.stats.Incr(stats.NumPushesMissed)
		return false
	}

	n.stats.Incr(stats.NumPushesDelivered)
	return true
}

func (n *Notifier) Connected(uid string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	_, ok := n.conns[uid]
	return ok
}

func (n *Notifier) addClient(c *Client) {
	n.mu.Lock()
	n.clients[c] = struct{}{}
	n.mu.Unlock()

	n.stats.Incr(stats.NumActiveConnections)
}

func (n *Notifier) removeClient(c *Client) {
	n.mu.Lock()
	_, ok := n.clients[c]
	delete(n.clients, c)
	n.mu.Unlock()

	if ok {
		n.stats.Decr(stats.NumActiveConnections)
	}
}

// Shutdown closes every open connection and waits for their loops to
// exit or for ctx to expire.
func (n *Notifier) Shutdown(ctx context.Context) error {
	n.log.Info("closing websocket connections")

	n.mu.RLock()
	clients := make([]*Client, 0, len(n.clients))
	for c := range n.clients {
		clients = append(clients, c)
	}
	n.mu.RUnlock()

	for _, c := range clients {
		c.stopClient()
	}

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
