package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/park285/pubg-card-studio/internal/adapter/cardpresenter"
	"github.com/park285/pubg-card-studio/internal/studio"
	"github.com/park285/pubg-card-studio/pkg/carddto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	wsEventBuffer  = 32
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
)

// liveSync streams session events to the client and applies edit commands
// it sends back.
func (s *Server) liveSync(w http.ResponseWriter, r *http.Request) {
	c, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  originPatterns(s.cfg.AllowedOrigins),
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	logger := s.logger.With(zap.String("session", c.ID()))
	events, unsubscribe := c.Subscribe(wsEventBuffer)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	initial := c.State()
	if err := s.writeEvent(ctx, conn, cardpresenter.ToDTOEvent(studio.Event{Type: studio.EventSnapshot, State: &initial})); err != nil {
		return
	}

	go func() {
		defer cancel()
		s.readCommands(ctx, conn, c, logger)
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "session closed")
				return
			}
			if err := s.writeEvent(ctx, conn, cardpresenter.ToDTOEvent(ev)); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			pctx, pcancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				failures++
				if failures >= 2 {
					conn.Close(websocket.StatusGoingAway, "ping failure")
					return
				}
				continue
			}
			failures = 0
		}
	}
}

func (s *Server) readCommands(ctx context.Context, conn *websocket.Conn, c *studio.Coordinator, logger *zap.Logger) {
	for {
		var cmd carddto.Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var err error
		switch strings.ToLower(strings.TrimSpace(cmd.Op)) {
		case carddto.OpField:
			_, err = c.SetField(cmd.Field, cmd.Value)
		case carddto.OpRole:
			_, err = c.SelectRole(cmd.Value)
		case carddto.OpTheme:
			_, err = c.SelectTheme(cmd.Value)
		default:
			_ = s.writeEvent(ctx, conn, cardpresenter.ToDTOError("unknown_op", errors.New("unknown op: "+cmd.Op)))
			continue
		}
		if err != nil {
			_, code := editErrorStatus(err)
			if werr := s.writeEvent(ctx, conn, cardpresenter.ToDTOError(code, err)); werr != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(ctx context.Context, conn *websocket.Conn, ev carddto.Event) error {
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, ev)
}

// originPatterns turns CORS origins into host patterns for the handshake check.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}
