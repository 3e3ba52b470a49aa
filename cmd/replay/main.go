package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"blockstride.dev/internal/persistence/replay"
	"blockstride.dev/internal/protocol"
)

func main() {
	var (
		path     = flag.String("file", "", "path to replay-<session>.jsonl.zst")
		fromTick = flag.Uint64("from_tick", 0, "start at tick (inclusive, optional)")
		toTick   = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
		dump     = flag.Bool("dump", false, "print every frame instead of a summary")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(2)
	}

	r, err := replay.NewReader(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open replay:", err)
		os.Exit(1)
	}
	defer r.Close()

	var (
		frames    uint64
		firstTick uint64
		lastTick  uint64
		distance  float64
		maxY      = math.Inf(-1)
		minY      = math.Inf(1)
		counts    = map[string]uint64{}
		states    = map[string]uint64{}

		havePrev bool
		prev     protocol.StateMsg
	)

	for {
		var frame protocol.StateMsg
		err := r.Next(&frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "read replay:", err)
			os.Exit(1)
		}
		if frame.Tick < *fromTick {
			continue
		}
		if *toTick > 0 && frame.Tick > *toTick {
			break
		}

		if *dump {
			fmt.Printf("tick=%d pos=[%.2f %.2f %.2f] state=%s vel=%.2f progress=%.2f events=%v\n",
				frame.Tick, frame.Pos[0], frame.Pos[1], frame.Pos[2],
				frame.State, frame.JumpVelocity, frame.JumpProgress, frame.Events)
		}

		if frames == 0 {
			firstTick = frame.Tick
		}
		lastTick = frame.Tick
		frames++
		states[frame.State]++
		for _, ev := range frame.Events {
			counts[ev]++
		}
		if frame.Pos[1] > maxY {
			maxY = frame.Pos[1]
		}
		if frame.Pos[1] < minY {
			minY = frame.Pos[1]
		}
		if havePrev {
			dx := frame.Pos[0] - prev.Pos[0]
			dz := frame.Pos[2] - prev.Pos[2]
			distance += math.Hypot(dx, dz)
		}
		prev = frame
		havePrev = true
	}

	if frames == 0 {
		fmt.Println("no frames in range")
		return
	}

	fmt.Printf("frames=%d ticks=%d..%d distance=%.1f y=[%.1f..%.1f]\n",
		frames, firstTick, lastTick, distance, minY, maxY)
	fmt.Printf("events: jump=%d land=%d fall=%d splash=%d surface=%d\n",
		counts["jump"], counts["land"], counts["fall"], counts["splash"], counts["surface"])
	fmt.Printf("states: grounded=%d crouching=%d jumping=%d falling=%d swimming=%d\n",
		states["grounded"], states["crouching"], states["jumping"], states["falling"], states["swimming"])
}
