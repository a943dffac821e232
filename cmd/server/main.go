package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/draw-guess-backend/internal/config"
	"github.com/DoyleJ11/draw-guess-backend/internal/engine"
	"github.com/DoyleJ11/draw-guess-backend/internal/game"
	"github.com/DoyleJ11/draw-guess-backend/internal/httpapi"
	"github.com/DoyleJ11/draw-guess-backend/internal/hub"
	"github.com/DoyleJ11/draw-guess-backend/internal/logger"
	"github.com/DoyleJ11/draw-guess-backend/internal/store/memory"
	"github.com/DoyleJ11/draw-guess-backend/internal/store/mongostore"
	"github.com/DoyleJ11/draw-guess-backend/internal/store/pgstore"
	"github.com/DoyleJ11/draw-guess-backend/internal/store/redisstore"
	"github.com/DoyleJ11/draw-guess-backend/internal/words"
)

var version = "dev"

type roomStore interface {
	game.RoomStore
	io.Closer
}

type wordSource interface {
	game.WordSource
	io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	closers = append(closers, store)

	wordSrc, err := openWords(ctx, cfg)
	if err != nil {
		return err
	}
	closers = append(closers, wordSrc)

	opts := []game.Option{
		game.WithRules(engine.Rules{ScoreOncePerRound: cfg.ScoreOncePerRound}),
		game.WithRoomTTL(cfg.RoomTTL),
		game.WithVersion(version),
	}
	if cfg.EventLog {
		// Reuse the room store's connection when rooms already live in postgres.
		pg, ok := store.(*pgstore.Store)
		if !ok {
			if pg, err = pgstore.Open(cfg.DatabaseURL); err != nil {
				return err
			}
			closers = append(closers, pg)
		}
		opts = append(opts, game.WithEventLog(pg))
	}

	h := hub.NewHub(ctx)
	defer h.Shutdown()

	svc := game.New(store, wordSrc, h, log, opts...)

	purged, err := svc.PurgeEmpty(ctx)
	if err != nil {
		return fmt.Errorf("purge empty rooms: %w", err)
	}
	log.Info("startup cleanup done", zap.Int("purged", purged))

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(svc, log, httpapi.Options{
			MaxBodyBytes:   cfg.MaxBodyBytes,
			AllowedOrigins: cfg.AllowedOrigins(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.StoreDriver),
			zap.String("words", cfg.WordsSource),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return svc.RunSweeper(gctx, cfg.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (roomStore, error) {
	switch cfg.StoreDriver {
	case "redis":
		return redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RoomTTL)
	case "postgres":
		return pgstore.Open(cfg.DatabaseURL)
	case "mongo":
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return memory.New(), nil
	}
}

func openWords(ctx context.Context, cfg *config.Config) (wordSource, error) {
	switch cfg.WordsSource {
	case "file":
		list, err := words.LoadFile(cfg.WordsFile)
		if err != nil {
			return nil, err
		}
		return nopCloser{words.NewList(list)}, nil
	case "postgres":
		return words.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nopCloser{words.NewList(words.Builtin)}, nil
	}
}

type nopCloser struct{ game.WordSource }

func (nopCloser) Close() error { return nil }
