package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/analytics"
	"github.com/abhisek/prepwise/internal/coach"
	"github.com/abhisek/prepwise/internal/config"
	"github.com/abhisek/prepwise/internal/events"
	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/level"
	"github.com/abhisek/prepwise/internal/llm"
	"github.com/abhisek/prepwise/internal/logging"
	"github.com/abhisek/prepwise/internal/speech"
	"github.com/abhisek/prepwise/internal/store"
)

// coachMode says whether a command talks to the model provider.
type coachMode int

const (
	coachNone coachMode = iota
	// coachOptional wires the coach when a provider is configured, and
	// runs without AI content otherwise.
	coachOptional
	coachRequired
)

// app is the core wired for one command invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	user   string

	store      store.Store
	interviews *interview.Service
	levels     *level.Service
	analytics  *analytics.Service
	coach      *coach.Coach

	closers []io.Closer
}

func newApp(cmd *cobra.Command, mode coachMode) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if dbPath != "" {
		cfg.Store.Driver = store.DriverSQLite
		cfg.Store.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	userID, err := resolveUser(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, user: userID}

	a.store, err = store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if mode != coachNone {
		if err := a.wireCoach(ctx, mode); err != nil {
			a.Close()
			return nil, err
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RedisAddr != "" {
		r, err := events.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("event publication disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			publisher = r
			a.closers = append(a.closers, r)
		}
	}

	a.levels = level.NewService(a.store.Levels(), logger)
	opts := interview.Options{
		Levels:         a.levels,
		Publisher:      publisher,
		Logger:         logger,
		SummaryTimeout: cfg.SummaryTimeout,
	}
	if a.coach != nil {
		opts.Coach = a.coach
	}
	a.interviews = interview.NewService(a.store.Interviews(), opts)
	a.analytics = analytics.NewService(a.store.Interviews(), a.levels, logger)
	return a, nil
}

func (a *app) wireCoach(ctx context.Context, mode coachMode) error {
	if err := a.cfg.LLM.Validate(); err != nil {
		if mode == coachOptional {
			a.logger.Debug("AI coach disabled", zap.Error(err))
			return nil
		}
		return err
	}

	provider, err := llm.NewProvider(ctx, a.cfg.LLM, a.logger)
	if err != nil {
		return fmt.Errorf("create model provider: %w", err)
	}
	pools, err := coach.LoadPools()
	if err != nil {
		return err
	}

	opts := []coach.Option{coach.WithLogger(a.logger)}
	t, err := speech.New(ctx, a.cfg.Speech)
	switch {
	case errors.Is(err, speech.ErrDisabled):
	case err != nil:
		a.logger.Warn("speech-to-text unavailable", zap.String("provider", a.cfg.Speech.Provider), zap.Error(err))
	default:
		opts = append(opts, coach.WithTranscriber(t))
		if c, ok := t.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
	}

	a.coach, err = coach.New(provider, pools, opts...)
	return err
}

// aiContext bounds one interactive AI operation.
func (a *app) aiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.AITimeout)
}

// Close releases everything newApp opened.
func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	if a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.store.Close(ctx)
	}
	_ = a.logger.Sync()
}
