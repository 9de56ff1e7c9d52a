// Command garagewatch follows the dashboard's update channels from a
// terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rivo/tview"

	"garage-dashboard/internal/domain/event"
	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/subscription"
)

func main() {
	base := flag.String("url", "http://localhost:5000", "dashboard base URL")
	wsPath := flag.String("ws-path", "/ws", "WebSocket endpoint path")
	channels := flag.String("channels", strings.Join(event.KnownChannels, ","), "comma-separated channels to follow")
	garageID := flag.Int64("garage", 1, "garage whose daily summary is shown")
	logPath := flag.String("log", "garagewatch.log", "log file; the terminal belongs to the UI")
	flag.Parse()

	target, err := subscription.EndpointURL(*base, *wsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	chs := parseChannels(*channels)
	if len(chs) == 0 {
		fmt.Fprintln(os.Stderr, "no channels given")
		os.Exit(2)
	}

	logCfg := logger.NewDefaultConfig()
	logCfg.Format = "text"
	logCfg.Output = "file"
	logCfg.FilePath = *logPath
	log := logger.NewLogrusLogger(logCfg).WithField("component", "garagewatch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watcher{
		app:     tview.NewApplication(),
		target:  target,
		chs:     chs,
		summary: newSummaryClient(*base, *garageID, &http.Client{Timeout: 5 * time.Second}),
		log:     log,
	}
	if err := w.run(ctx); err != nil {
		log.Errorf("garagewatch stopped: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type watcher struct {
	app     *tview.Application
	board   *board
	target  string
	chs     []string
	summary *summaryClient
	log     logger.Logger

	state atomic.Value
}

func (w *watcher) currentState() string {
	if s, ok := w.state.Load().(string); ok {
		return s
	}
	return ""
}

func (w *watcher) setState(s string) {
	w.state.Store(s)
	w.board.SetState(s)
}

func (w *watcher) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.board = newBoard(w.app, w.target, w.chs)
	w.state.Store("[yellow]connecting[-]")

	mux := subscription.NewMux(ctx, w.target,
		subscription.WithLogger(w.log),
		subscription.WithOnOpen(func() {
			w.setState("[green]connected[-]")
			go w.refreshSummary(ctx)
		}),
		subscription.WithOnError(func(err error) {
			w.setState(fmt.Sprintf("[red]reconnecting[-] (%v)", err))
		}),
		subscription.WithOnClose(func(ev subscription.CloseEvent) {
			if ev.Exhausted {
				w.setState(fmt.Sprintf("[red]gave up[-] (code %d)", ev.Code))
				return
			}
			w.setState("[gray]closed[-]")
		}),
	)
	defer mux.Close()

	for _, ch := range w.chs {
		mux.Subscribe(ch, w.onEnvelope(ctx))
	}

	go func() {
		<-ctx.Done()
		w.app.Stop()
	}()
	return w.app.Run()
}

func (w *watcher) onEnvelope(ctx context.Context) func(*hub.Envelope) {
	return func(env *hub.Envelope) {
		w.board.AddEvent(describe(env), w.currentState())
		if env.Channel == event.ChannelBookings {
			go w.refreshSummary(ctx)
		}
	}
}

func (w *watcher) refreshSummary(ctx context.Context) {
	summary, err := w.summary.Fetch(ctx)
	if err != nil {
		w.log.Warnf("Today summary unavailable: %v", err)
		w.board.SetSummary("Today: [red]unavailable[-]")
		return
	}
	w.board.SetSummary(formatSummary(summary))
}
