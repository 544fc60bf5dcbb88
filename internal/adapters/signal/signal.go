// Package signal is the websocket transport adapter: it owns the upgrade,
// the per-connection pumps and the subscription-group fan-out, and feeds
// inbound protocol events to the coordinator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/app"
	"github.com/dkeye/Chatter/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const sendBuffer = 32

type Controller struct {
	Coord   *app.Coordinator
	Groups  *Groups
	Limiter *SendRateLimiter // nil when disabled

	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(coord *app.Coordinator, groups *Groups, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Coord:      coord,
		Groups:     groups,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

type WsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and starts the pumps. The connection handle
// is minted here and dies with the connection; it is never reused across
// reconnects (detach relies on that).
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	id := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan []byte, sendBuffer),
	}

	ctl.Groups.Register(id, conn)
	ctl.Coord.Connect(id)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}
