// Command boardwatch follows one board live from the terminal. It keeps a
// local copy of the board in step with the event stream and reprints it
// after every change.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"taskflow-board-api/internal/client"
	"taskflow-board-api/internal/metrics"
	"taskflow-board-api/internal/reconciler"
)

func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8000/api", "base URL of the board API")
		wsURL    = flag.String("ws", "", "websocket URL (derived from -api when empty)")
		token    = flag.String("token", os.Getenv("TASKFLOW_TOKEN"), "bearer token (defaults to $TASKFLOW_TOKEN)")
		board    = flag.String("board", "", "board ID to watch")
		moveTask = flag.String("move", "", "task ID to move once the board is loaded")
		toList   = flag.String("to-list", "", "target list ID for -move")
		position = flag.Int("position", 1, "1-based target position for -move")
		verbose  = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	boardID, err := uuid.Parse(*board)
	if err != nil {
		fatalf("invalid -board %q: %v", *board, err)
	}
	if *token == "" {
		fatalf("a token is required (-token or $TASKFLOW_TOKEN)")
	}
	if *wsURL == "" {
		*wsURL = streamURL(*apiURL)
	}

	logger := newLogger(*verbose)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewWithRegistry(prometheus.NewRegistry(), logger)
	boards := client.NewBoardClient(*apiURL, *token, 10*time.Second, logger, m)
	stream := client.NewStreamClient(client.StreamConfig{URL: *wsURL, Token: *token}, logger)

	rec := reconciler.New(boardID, boards, boards, logger)
	rec.OnChange = func(v *reconciler.View) {
		fmt.Print("\033[H\033[2J")
		render(os.Stdout, v)
	}

	if err := rec.Sync(ctx); err != nil {
		fatalf("load board: %v", err)
	}
	if err := stream.Join(boardID); err != nil {
		fatalf("join board: %v", err)
	}

	streamErr := make(chan error, 1)
	go func() { streamErr <- stream.Run(ctx) }()

	if *moveTask != "" {
		go func() {
			if err := runMove(ctx, rec, *moveTask, *toList, *position); err != nil {
				logger.Error("Move failed", zap.Error(err))
			}
		}()
	}

	if err := rec.Run(ctx, stream.Events(), stream.Connected()); err != nil && !errors.Is(err, context.Canceled) {
		fatalf("watch: %v", err)
	}
	if err := <-streamErr; err != nil && !errors.Is(err, context.Canceled) {
		fatalf("stream: %v", err)
	}
}

func runMove(ctx context.Context, rec *reconciler.Reconciler, task, list string, pos int) error {
	taskID, err := uuid.Parse(task)
	if err != nil {
		return fmt.Errorf("invalid -move: %w", err)
	}
	listID, err := uuid.Parse(list)
	if err != nil {
		return fmt.Errorf("invalid -to-list: %w", err)
	}
	_, err = rec.MoveTask(ctx, taskID, listID, pos)
	return err
}

// streamURL maps http(s)://host/api to ws(s)://host/api/ws
func streamURL(api string) string {
	u := strings.TrimSuffix(api, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "boardwatch: "+format+"\n", args...)
	os.Exit(1)
}
