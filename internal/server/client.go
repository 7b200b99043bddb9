package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
	sendBufferSize = 64
)

type Client struct {
	id          string
	conn        *websocket.Conn
	notifier    *Notifier
	log         *zap.Logger
	verifiedUid string
	uidLock     sync.Mutex
	uid         string
	send        chan *ServerMessage
	dead        atomic.Bool
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewClient(conn *websocket.Conn, n *Notifier, l *zap.Logger, verifiedUid string) *Client {
	id := uuid.NewString()
	return &Client{
		id:          id,
		conn:        conn,
		notifier:    n,
		log:         l.With(zap.String("conn_id", id)),
		verifiedUid: verifiedUid,
		send:        make(chan *ServerMessage, sendBufferSize),
		stop:        make(chan struct{}),
	}
}

func (c *Client) Id() string {
	return c.id
}

func (c *Client) Uid() string {
	c.uidLock.Lock()
	defer c.uidLock.Unlock()
	return c.uid
}

func (c *Client) setUid(uid string) (prev string) {
	c.uidLock.Lock()
	defer c.uidLock.Unlock()
	prev, c.uid = c.uid, uid
	return prev
}

// Write drains the send queue onto the socket. There is no heartbeat;
// a half-open connection is only noticed when a write fails.
func (c *Client) Write() {
	defer func() {
		c.conn.Close()
		c.log.Debug("write exiting")
	}()

	for {
		select {
		case msg := <-c.send:
			bytes, err := serializeMessage(msg)
			if err != nil {
				c.log.Error("failed to serialize message", zap.Error(err))
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				c.markDead()
				return
			}
		case <-c.stop:
			c.sendMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Debug("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Warn("ws read", zap.Error(err))
			}
			break
		}

		msg, err := parseClientMessage(raw)
		if err != nil {
			c.log.Debug("ignoring malformed frame", zap.Error(err))
			continue
		}

		switch msg.Type {
		case FrameAuth:
			c.authenticate(msg.Uid)
		default:
			c.log.Debug("ignoring frame", zap.String("type", msg.Type))
		}
	}
}

func (c *Client) authenticate(uid string) {
	if uid == "" {
		c.log.Debug("ignoring auth frame without uid")
		return
	}

	if c.verifiedUid != "" && uid != c.verifiedUid {
		c.log.Warn("auth frame does not match verified identity", zap.String("uid", uid))
		return
	}

	if prev := c.setUid(uid); prev != "" && prev != uid {
		c.notifier.Unregister(prev, c)
	}

	c.notifier.Register(uid, c)
	c.queueMessage(AuthSuccess(uid))
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	if c.dead.Load() {
		return false
	}

	select {
	case c.send <- msg:
	case <-c.stop:
		return false
	default:
		c.log.Warn("failed to queue message, send buffer is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Debug("write message", zap.Error(err))
		}
		return false
	}

	return true
}

// markDead stops further pushes to a connection whose last write failed.
func (c *Client) markDead() {
	c.dead.Store(true)
	if uid := c.Uid(); uid != "" {
		c.notifier.Unregister(uid, c)
	}
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.dead.Store(true)
	if uid := c.Uid(); uid != "" {
		c.notifier.Unregister(uid, c)
	}
	c.notifier.removeClient(c)
	c.stopClient()
}
