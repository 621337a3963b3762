// Package ws streams the simulation to browser viewers over WebSocket and
// feeds their key presses back into it.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/torus-drive/internal/config"
	"github.com/Faultbox/torus-drive/internal/input"
	"github.com/Faultbox/torus-drive/internal/logger"
	"github.com/Faultbox/torus-drive/internal/sim"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
	maxMessage = 4096
)

// Server owns a simulation and runs it at a fixed tick rate. Only the tick
// goroutine touches the simulation; connections talk to it over channels.
type Server struct {
	cfg      config.ServerConfig
	sim      *sim.Simulation
	log      *zap.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	inputs     chan clientInput
	done       chan struct{} // closed when Run returns

	ready   atomic.Bool
	clients atomic.Int32

	// Encoded landscape message, built once by the tick goroutine.
	mesh []byte
}

type clientInput struct {
	client  *client
	actions input.ActionSet
}

// NewServer creates a server around s.
func NewServer(cfg config.ServerConfig, s *sim.Simulation) *Server {
	return &Server{
		cfg: cfg,
		sim: s,
		log: logger.Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		inputs:     make(chan clientInput, 64),
		done:       make(chan struct{}),
	}
}

// Handler returns the HTTP routes: /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// ListenAndServe runs the HTTP server and the tick loop until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run drives the simulation until ctx is done. Each tick advances by a
// fixed 1/TickRate seconds with the union of every viewer's held actions.
// Run must be called at most once.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)

	dt := 1 / float64(s.cfg.TickRate)
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	clients := make(map[*client]input.ActionSet)
	defer func() {
		for c := range clients {
			c.close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-s.register:
			clients[c] = 0
			s.clients.Store(int32(len(clients)))
			s.log.Info("viewer connected", zap.String("remote", c.remote), zap.Int("viewers", len(clients)))

		case c := <-s.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				c.close()
				s.clients.Store(int32(len(clients)))
				s.log.Info("viewer disconnected", zap.String("remote", c.remote), zap.Int("viewers", len(clients)))
			}

		case in := <-s.inputs:
			if _, ok := clients[in.client]; ok {
				clients[in.client] = in.actions
			}

		case <-ticker.C:
			var held input.ActionSet
			for _, a := range clients {
				held |= a
			}

			snap := s.sim.Advance(dt, held)
			s.ready.Store(snap.Ready)
			if len(clients) == 0 {
				continue
			}

			state, err := json.Marshal(NewStateMessage(snap))
			if err != nil {
				s.log.Error("encoding state", zap.Error(err))
				continue
			}

			if snap.Ready && s.mesh == nil {
				if s.mesh, err = json.Marshal(NewLandscapeMessage(s.sim.Landscape().Mesh())); err != nil {
					s.log.Error("encoding landscape", zap.Error(err))
				}
			}

			for c := range clients {
				if s.mesh != nil && !c.hasLandscape {
					c.hasLandscape = c.enqueue(s.mesh)
				}
				if !c.enqueue(state) {
					s.log.Debug("viewer lagging, state dropped", zap.String("remote", c.remote))
				}
			}
		}
	}
}

// Ready reports whether the landscape has loaded and the vehicle is placed.
func (s *Server) Ready() bool { return s.ready.Load() }

// Viewers returns the number of connected viewers.
func (s *Server) Viewers() int { return int(s.clients.Load()) }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Ready   bool `json:"ready"`
		Viewers int  `json:"viewers"`
	}{s.Ready(), s.Viewers()})
}

// HandleWS upgrades a viewer connection and serves it until it closes.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(conn, s.cfg.WriteTimeout)
	select {
	case s.register <- c:
	case <-r.Context().Done():
		conn.Close()
		return
	case <-s.done:
		conn.Close()
		return
	}

	go c.writeLoop(s.log)
	s.readLoop(c)

	select {
	case s.unregister <- c:
	case <-c.done:
	case <-s.done:
	}
}

func (s *Server) readLoop(c *client) {
	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	keys := input.NewKeyState(input.DefaultKeymap())
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read", zap.String("remote", c.remote), zap.Error(err))
			}
			return
		}

		msg, err := ParseClientMessage(data)
		if err != nil {
			s.reject(c, err)
			continue
		}

		var held input.ActionSet
		switch msg.Type {
		case MessageTypeKey:
			if !keys.Set(msg.Key, msg.Down) {
				continue
			}
			held = keys.Actions()
		case MessageTypeActions:
			held, err = input.ParseActionSet(msg.Actions)
			if err != nil {
				s.reject(c, err)
				continue
			}
		}

		select {
		case s.inputs <- clientInput{client: c, actions: held}:
		case <-c.done:
			return
		case <-s.done:
			return
		}
	}
}

func (s *Server) reject(c *client, err error) {
	s.log.Debug("rejected viewer message", zap.String("remote", c.remote), zap.Error(err))
	if data, mErr := json.Marshal(NewErrorMessage(err)); mErr == nil {
		c.enqueue(data)
	}
}
