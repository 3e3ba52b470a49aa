package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"blockstride.dev/internal/persistence/indexdb"
	"blockstride.dev/internal/persistence/replay"
	"blockstride.dev/internal/sim/terrain"
	"blockstride.dev/internal/sim/tuning"
	"blockstride.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seed       = flag.Int64("seed", 0, "world seed (0: use tuning value)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		disableDB  = flag.Bool("disable_db", false, "disable the session index database")
		disableRec = flag.Bool("disable_replay", false, "disable replay recording")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.WorldSeed = *seed
	}

	gen := terrain.DefaultGen(tune.WorldSeed)
	gen.BoundaryR = tune.WorldBoundaryR
	world := terrain.New(gen)
	logger.Printf("world seed=%d boundary=%d", tune.WorldSeed, tune.WorldBoundaryR)

	srv := ws.NewServer(world, tune, logger)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		srv.SetSessionIndex(idx)
	}

	if !*disableRec {
		replayDir := filepath.Join(*dataDir, "replays")
		srv.SetRecorderFactory(func(sessionID string) (ws.Recorder, error) {
			return replay.NewWriter(replayDir, sessionID)
		})
	}

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		fmt.Fprintf(rw, "# HELP blockstride_sessions Current number of connected sessions.\n")
		fmt.Fprintf(rw, "# TYPE blockstride_sessions gauge\n")
		fmt.Fprintf(rw, "blockstride_sessions %d\n", srv.ActiveSessions())

		fmt.Fprintf(rw, "# HELP blockstride_dropped_state_frames STATE frames dropped on slow clients.\n")
		fmt.Fprintf(rw, "# TYPE blockstride_dropped_state_frames counter\n")
		fmt.Fprintf(rw, "blockstride_dropped_state_frames %d\n", srv.DroppedStateFrames())

		fmt.Fprintf(rw, "# HELP blockstride_loaded_chunks Loaded terrain chunk count.\n")
		fmt.Fprintf(rw, "# TYPE blockstride_loaded_chunks gauge\n")
		fmt.Fprintf(rw, "blockstride_loaded_chunks %d\n", world.LoadedChunks())

		if idx != nil {
			st := idx.Stats()
			fmt.Fprintf(rw, "# HELP blockstride_index_queue_depth Session index writer backlog.\n")
			fmt.Fprintf(rw, "# TYPE blockstride_index_queue_depth gauge\n")
			fmt.Fprintf(rw, "blockstride_index_queue_depth %d\n", st.QueueDepth)
			fmt.Fprintf(rw, "# HELP blockstride_index_dropped Session index rows dropped.\n")
			fmt.Fprintf(rw, "# TYPE blockstride_index_dropped counter\n")
			fmt.Fprintf(rw, "blockstride_index_dropped{kind=%q} %d\n", "start", st.DropStartTotal)
			fmt.Fprintf(rw, "blockstride_index_dropped{kind=%q} %d\n", "end", st.DropEndTotal)
		}
	})
	if enablePprof() {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", srv.Handler())

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = httpSrv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func enablePprof() bool {
	v := strings.TrimSpace(os.Getenv("BS_ENABLE_PPROF_HTTP"))
	return v == "" || v == "1" || strings.EqualFold(v, "true")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
