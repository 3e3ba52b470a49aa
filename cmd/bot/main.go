package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"blockstride.dev/internal/protocol"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	heading := rng.Float64() * 2 * math.Pi

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s tick_rate=%d seed=%d spawn=%v", w.SessionID, w.TickRateHz, w.Seed, w.Spawn)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			heading = wander(conn, rng, heading, &st)

		case protocol.TypeError:
			var em protocol.ErrorMsg
			if err := json.Unmarshal(msg, &em); err != nil {
				continue
			}
			logger.Fatalf("server error: %s %s", em.Code, em.Message)
		}
	}
}

// wander walks in the current heading, occasionally turning, jumping, or
// ducking. Returns the (possibly new) heading.
func wander(conn *websocket.Conn, rng *rand.Rand, heading float64, st *protocol.StateMsg) float64 {
	// Turn every ~5 seconds at 60 Hz; back off hard when swimming so the
	// bot gets out of the water eventually.
	if st.Tick%300 == 0 || (st.Swimming && st.Tick%60 == 0) {
		heading += (rng.Float64() - 0.5) * math.Pi
	}

	in := protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		MoveX:           math.Cos(heading),
		MoveZ:           math.Sin(heading),
	}
	if st.Tick%240 == 30 && rng.Intn(2) == 0 {
		in.Jump = true
	}
	if st.Tick%500 < 40 && rng.Intn(4) == 0 {
		in.Crouch = true
	}

	for _, ev := range st.Events {
		if ev == "splash" {
			// Swim back the way we came.
			heading += math.Pi
			break
		}
	}

	_ = conn.WriteJSON(in)
	return heading
}
