package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/mindmaze-client/internal/audio"
	"github.com/DoyleJ11/mindmaze-client/internal/config"
	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/gameapi"
	"github.com/DoyleJ11/mindmaze-client/internal/httpapi"
	"github.com/DoyleJ11/mindmaze-client/internal/kv"
	"github.com/DoyleJ11/mindmaze-client/internal/progress"
	"github.com/DoyleJ11/mindmaze-client/internal/session"
	"github.com/DoyleJ11/mindmaze-client/internal/tui"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mindmaze:", err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("api", cfg.APIURL),
		zap.String("store", cfg.Store),
		zap.String("bridge", cfg.BridgeAddr),
		zap.Bool("audio", cfg.Audio),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	prog := progress.NewStore(store, log)
	prog.Load(ctx)

	backend := openAudio(cfg, log)
	if c, ok := backend.(interface{ Close() error }); ok {
		defer func() { err = multierr.Append(err, c.Close()) }()
	}
	orch := audio.NewOrchestrator(ctx, backend, store, log)

	api := gameapi.New(cfg.APIURL, cfg.HTTPTimeout, log)
	mgr := session.New(ctx, api, prog, session.RealClock{}, log)
	defer mgr.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	ui := tui.New(screen, mgr, orch, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	uiSnaps := make(chan session.Snapshot, 64)
	audioSnaps := make(chan session.Snapshot, 64)
	mgr.Join("tui", uiSnaps)
	mgr.Join("audio", audioSnaps)

	g.Go(func() error {
		defer cancel() // leaving the UI ends the program
		return ui.Run(ctx, uiSnaps)
	})

	phases := make(chan engine.Phase, 1)
	g.Go(func() error {
		defer close(phases)
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap, ok := <-audioSnaps:
				if !ok {
					return nil
				}
				select {
				case phases <- snap.State.Phase:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		orch.Run(ctx, phases)
		return nil
	})

	if cfg.BridgeAddr != "" {
		srv := &http.Server{
			Addr:              cfg.BridgeAddr,
			Handler:           httpapi.SetupRoutes(mgr, log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("bridge listening", zap.String("addr", cfg.BridgeAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("bridge: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	log.Info("stopped", zap.Error(err))
	return err
}

func openStore(cfg config.Config) (kv.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return kv.OpenPostgres(cfg.DatabaseURL)
	case config.StoreMemory:
		return kv.NewMemStore(), nil
	default:
		return kv.NewFileStore(cfg.ProgressFile()), nil
	}
}

// openAudio falls back to silence when audio is off or no device works.
func openAudio(cfg config.Config, log *zap.Logger) audio.Backend {
	if !cfg.Audio {
		return audio.NullBackend{}
	}
	b, err := audio.NewBeepBackend()
	if err != nil {
		log.Warn("audio unavailable, continuing silently", zap.Error(err))
		return audio.NullBackend{}
	}
	return b
}
