// Package observer serves the read-only state stream and the control channel
// used by viewers over WebSocket.
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/protocol"
	"github.com/UniStuttgart-INS/OOP-RobotNavigationChallenge/internal/sim/runner"
)

type Options struct {
	// AllowRemote accepts non-loopback clients. Off by default.
	AllowRemote bool
	// DefaultEncoding applies when SUBSCRIBE leaves the encoding empty.
	DefaultEncoding string
}

type Server struct {
	runner *runner.Runner
	log    zerolog.Logger
	opts   Options

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	sessions atomic.Int64
}

func NewServer(r *runner.Runner, logger zerolog.Logger, opts Options) *Server {
	if opts.DefaultEncoding == "" {
		opts.DefaultEncoding = protocol.EncodingJSON
	}
	return &Server{
		runner: r,
		log:    logger,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Sessions is the number of connected viewers.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

func (s *Server) allowed(r *http.Request) bool {
	return s.opts.AllowRemote || isLoopbackRemote(r.RemoteAddr)
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		tn := s.runner.Tuning()
		resp := protocol.BootstrapResponse{
			ProtocolVersion: protocol.Version,
			Encodings:       []string{protocol.EncodingJSON, protocol.EncodingMsgpack},
			Board:           protocol.Board{Width: tn.Game.BoardWidth, Height: tn.Game.BoardHeight},
			Players:         tn.Game.NumPlayers,
			UpdateTimeStep:  tn.Game.UpdateTimeStep,
			MinSpeed:        runner.MinSpeed,
			MaxSpeed:        runner.MaxSpeed,
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// session is the per-connection subscription; the reader swaps it on re-SUBSCRIBE.
type session struct {
	encoding string
	states   <-chan protocol.StateMsg
	cancel   func()
}

func (s *Server) subscribe(sub protocol.SubscribeMsg) (*session, error) {
	enc := sub.Encoding
	if enc == "" {
		enc = s.opts.DefaultEncoding
	}
	enc, err := protocol.NormalizeEncoding(enc)
	if err != nil {
		return nil, err
	}
	ch, cancel := s.runner.Subscribe(sub.Scans)
	return &session{encoding: enc, states: ch, cancel: cancel}, nil
}

func decodeSubscribe(msg []byte) (protocol.SubscribeMsg, error) {
	var sub protocol.SubscribeMsg
	if err := protocol.ValidateJSON(protocol.SchemaSubscribe, msg); err != nil {
		return sub, err
	}
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, err
	}
	if sub.ProtocolVersion != protocol.Version {
		return sub, fmt.Errorf("protocol version %q, want %q", sub.ProtocolVersion, protocol.Version)
	}
	return sub, nil
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, err := decodeSubscribe(msg)
		if err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, "expected SUBSCRIBE")
			return
		}
		sess, err := s.subscribe(sub)
		if err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, err.Error())
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		s.sessions.Add(1)
		defer s.sessions.Add(-1)
		log := s.log.With().Str("session", sid).Str("remote", r.RemoteAddr).Logger()
		log.Info().Str("encoding", sess.encoding).Bool("scans", sub.Scans).Msg("observer connected")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		swap := make(chan *session, 1)
		replies := make(chan protocol.ErrorMsg, 16)

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			cur := sess
			defer func() { cur.cancel() }()
			fail := func(err error) {
				writeErr <- err
				// Unblocks the reader.
				_ = conn.Close()
			}
			write := func(enc string, v any) error {
				b, err := protocol.Marshal(enc, v)
				if err != nil {
					return err
				}
				typ := websocket.TextMessage
				if enc == protocol.EncodingMsgpack {
					typ = websocket.BinaryMessage
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				return conn.WriteMessage(typ, b)
			}
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case next := <-swap:
					cur.cancel()
					cur = next
				case e := <-replies:
					// Errors always go out as JSON text so any client can read them.
					if err := write(protocol.EncodingJSON, e); err != nil {
						fail(err)
						return
					}
				case st := <-cur.states:
					if err := write(cur.encoding, st); err != nil {
						fail(err)
						return
					}
				}
			}
		}()

		reply := func(code string, err error) {
			select {
			case replies <- protocol.NewError(code, err):
			default:
				// Drop under load; the client may resend.
			}
		}

		// Reader loop: SUBSCRIBE updates and CONTROL commands.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				reply(protocol.ErrProtoBadRequest, err)
				continue
			}
			switch base.Type {
			case protocol.TypeSubscribe:
				sub, err := decodeSubscribe(msg)
				if err != nil {
					reply(protocol.ErrProtoBadRequest, err)
					continue
				}
				next, err := s.subscribe(sub)
				if err != nil {
					reply(protocol.ErrBadRequest, err)
					continue
				}
				select {
				case swap <- next:
				case <-ctx.Done():
					next.cancel()
				}
			case protocol.TypeControl:
				if base.ProtocolVersion != protocol.Version {
					reply(protocol.ErrProtoVersion, fmt.Errorf("protocol version %q", base.ProtocolVersion))
					continue
				}
				if err := protocol.ValidateJSON(protocol.SchemaControl, msg); err != nil {
					reply(protocol.ErrBadRequest, err)
					continue
				}
				var ctl protocol.ControlMsg
				if err := json.Unmarshal(msg, &ctl); err != nil {
					reply(protocol.ErrBadRequest, err)
					continue
				}
				if err := s.runner.Submit(ctl); err != nil {
					code := protocol.ErrBadRequest
					if err == runner.ErrBusy {
						code = protocol.ErrBusy
					}
					reply(code, err)
					continue
				}
				log.Debug().Str("op", ctl.Op).Msg("control queued")
			default:
				reply(protocol.ErrProtoBadRequest, fmt.Errorf("unexpected message type %q", base.Type))
			}
		}

		cancel()
		closeWith(conn, websocket.CloseNormalClosure, "bye")
		log.Info().Msg("observer disconnected")

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
