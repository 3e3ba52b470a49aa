package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"blockstride.dev/internal/protocol"
	"blockstride.dev/internal/sim/avatar"
	"blockstride.dev/internal/sim/terrain"
	"blockstride.dev/internal/sim/tuning"
)

// Recorder receives one record per simulated tick for a session.
type Recorder interface {
	Record(v any) error
	Close() error
}

// RecorderFactory opens a Recorder for a new session. A nil factory
// disables recording.
type RecorderFactory func(sessionID string) (Recorder, error)

// SessionIndex is notified about session lifecycle. Implementations must
// not block; the index layer queues writes internally.
type SessionIndex interface {
	SessionStarted(id, playerName string, start time.Time)
	SessionEnded(id string, end time.Time, st avatar.Stats)
}

type Server struct {
	world *terrain.World
	tun   tuning.Tuning
	log   *log.Logger

	newRecorder RecorderFactory
	index       SessionIndex

	upgrader websocket.Upgrader

	sessions     atomic.Int64
	droppedState atomic.Int64
}

func NewServer(w *terrain.World, tun tuning.Tuning, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		tun:   tun,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

// SetRecorderFactory wires per-session replay recording.
func (s *Server) SetRecorderFactory(f RecorderFactory) { s.newRecorder = f }

// SetSessionIndex wires the session index database.
func (s *Server) SetSessionIndex(idx SessionIndex) { s.index = idx }

// ActiveSessions reports the number of connected sessions.
func (s *Server) ActiveSessions() int64 { return s.sessions.Load() }

// DroppedStateFrames reports STATE frames skipped because a client's
// outbound queue was full.
func (s *Server) DroppedStateFrames() int64 { return s.droppedState.Load() }

// session is one connected player: a websocket, an avatar, and the most
// recent control input. The tick loop samples input; the reader loop
// replaces it.
type session struct {
	id   string
	name string

	av *avatar.Avatar

	mu          sync.Mutex
	input       avatar.Input
	jumpPending bool
	tunePending *float64
}

func (p *session) setInput(m protocol.InputMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = avatar.Input{MoveX: m.MoveX, MoveZ: m.MoveZ, Crouch: m.Crouch}
	if m.Jump {
		// Jump is an edge: latch it until the next tick consumes it.
		p.jumpPending = true
	}
}

func (p *session) setTune(m protocol.TuneMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m.WaterYOffset != nil {
		v := clampOffset(*m.WaterYOffset)
		p.tunePending = &v
	}
}

func (p *session) sample() avatar.Input {
	p.mu.Lock()
	defer p.mu.Unlock()
	in := p.input
	in.Jump = p.jumpPending
	p.jumpPending = false
	if p.tunePending != nil {
		p.av.SetWaterYOffset(*p.tunePending)
		p.tunePending = nil
	}
	return in
}

func clampOffset(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// handshake reserves the session slot; the cleanup below releases it.
		p := s.handshake(conn)
		if p == nil {
			return
		}
		start := time.Now()
		if s.index != nil {
			s.index.SessionStarted(p.id, p.name, start)
		}
		s.log.Printf("session %s joined name=%q", p.id, p.name)

		var rec Recorder
		if s.newRecorder != nil {
			r, err := s.newRecorder(p.id)
			if err != nil {
				s.log.Printf("session %s: recorder open failed: %v", p.id, err)
			} else {
				rec = r
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		out := make(chan []byte, 16)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Tick goroutine: advance the avatar at a fixed rate and publish
		// one STATE frame per tick. tickDone gates cleanup reads of the
		// avatar's final stats.
		tickDone := make(chan struct{})
		go func() {
			defer close(tickDone)
			dt := 1.0 / float64(s.tun.TickRateHz)
			tk := time.NewTicker(time.Duration(float64(time.Second) * dt))
			defer tk.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-tk.C:
					frame := s.step(p, dt)
					if rec != nil {
						_ = rec.Record(frame)
					}
					b, err := json.Marshal(frame)
					if err != nil {
						continue
					}
					select {
					case out <- b:
					default:
						s.droppedState.Add(1)
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeInput:
				var in protocol.InputMsg
				if err := json.Unmarshal(msg, &in); err != nil {
					continue
				}
				if in.ProtocolVersion != protocol.Version {
					continue
				}
				p.setInput(in)
			case protocol.TypeTune:
				var tn protocol.TuneMsg
				if err := json.Unmarshal(msg, &tn); err != nil {
					continue
				}
				p.setTune(tn)
			}
		}

		// Cleanup.
		cancel()
		<-tickDone
		s.sessions.Add(-1)
		if rec != nil {
			_ = rec.Close()
		}
		if s.index != nil {
			s.index.SessionEnded(p.id, time.Now(), p.av.Stats())
		}
		s.log.Printf("session %s left ticks=%d", p.id, p.av.Stats().Ticks)
	}
}

// step advances the session one tick and snapshots it as a STATE frame.
// The avatar is only touched from the tick goroutine; sample() is the
// sole crossing point from the reader.
func (s *Server) step(p *session, dt float64) protocol.StateMsg {
	in := p.sample()
	p.av.Step(dt, in)

	x, y, z := p.av.Position()
	evs := p.av.DrainEvents()
	names := make([]string, 0, len(evs))
	for _, e := range evs {
		names = append(names, string(e.Kind))
	}
	m := p.av.Machine()
	return protocol.StateMsg{
		Type:            protocol.TypeState,
		Tick:            p.av.Tick(),
		Pos:             [3]float64{x, y, z},
		State:           m.StateName(),
		JumpVelocity:    p.av.JumpVelocity(),
		JumpProgress:    p.av.JumpProgress(),
		Crouching:       p.av.Crouching(),
		Swimming:        p.av.Swimming(),
		InAir:           m.InAir(),
		SpeedMultiplier: m.SpeedMultiplier(),
		GroundBlock:     p.av.GroundBlock(),
		Events:          names,
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.ErrorMsg{
			Type: protocol.TypeError, Code: protocol.ErrProtoVersion,
			Message: "want protocol_version " + protocol.Version,
		})
		return nil
	}
	name := strings.TrimSpace(hello.PlayerName)
	if name == "" {
		name = "player"
	}

	// Reserve the slot before any further work so concurrent handshakes
	// cannot overshoot the cap. Released on every failure path below.
	if n := s.sessions.Add(1); s.tun.MaxSessions > 0 && n > int64(s.tun.MaxSessions) {
		s.sessions.Add(-1)
		_ = writeJSON(conn, protocol.ErrorMsg{
			Type: protocol.TypeError, Code: protocol.ErrSessionLimit,
			Message: "server full",
		})
		return nil
	}

	spawnY := s.world.SpawnY(s.tun.SpawnX, s.tun.SpawnZ)
	av := avatar.New(s.world, s.tun.SpawnX, spawnY, s.tun.SpawnZ, s.tun.MoveSpeed)
	av.SetWaterYOffset(s.tun.WaterYOffset)

	p := &session{
		id:   uuid.NewString(),
		name: name,
		av:   av,
	}

	if err := writeJSON(conn, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       p.id,
		TickRateHz:      s.tun.TickRateHz,
		Seed:            s.world.Seed(),
		Spawn:           [3]float64{s.tun.SpawnX, spawnY, s.tun.SpawnZ},
	}); err != nil {
		s.sessions.Add(-1)
		return nil
	}
	return p
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
