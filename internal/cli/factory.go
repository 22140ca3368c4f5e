package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/htn"
	"github.com/aretw0/htn/pkg/adapters/file"
	"github.com/aretw0/htn/pkg/adapters/process"
	"github.com/aretw0/htn/pkg/adapters/redis"
	"github.com/aretw0/htn/pkg/domain"
	"github.com/aretw0/htn/pkg/observability"
	"github.com/aretw0/htn/pkg/persistence/middleware"
	"github.com/aretw0/htn/pkg/ports"
	"github.com/aretw0/htn/pkg/registry"
	"github.com/aretw0/htn/pkg/session"
)

// Options carries the settings shared by every command.
type Options struct {
	Document  string // task tree document or a directory holding one
	Actions   string // actions config; defaults to actions.yaml beside the document
	StoreDir  string
	RedisAddr string
	Debug     bool

	// StateKey enables encryption of stored agent state (base64 AES-256 key).
	// PreviousKeys still decrypt state written before a key rotation.
	StateKey     string
	PreviousKeys []string
}

// Actions builds the action registry for a document from its actions config.
func Actions(opts Options, document string) (*registry.Registry, error) {
	dir := filepath.Dir(document)
	path := opts.Actions
	if path == "" {
		path = filepath.Join(dir, "actions.yaml")
	}

	cfg, err := process.LoadActions(path)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry()
	process.NewRunner(process.WithConfig(cfg), process.WithBaseDir(dir)).Export(reg)
	return reg, nil
}

// CreateEngine loads the task tree with standard CLI conventions.
// hooks are attached to every agent the engine creates.
func CreateEngine(ctx context.Context, opts Options, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*htn.Engine, error) {
	document, err := ResolveDocument(opts.Document)
	if err != nil {
		return nil, err
	}

	reg, err := Actions(opts, document)
	if err != nil {
		return nil, err
	}
	logger.Debug("actions registered", "document", document, "actions", reg.Names())

	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}

	loader := file.NewLoader(document, file.WithActions(reg), file.WithLogger(logger))
	engine, err := htn.NewEngine(ctx, loader,
		htn.WithLogger(logger),
		htn.WithLifecycleHooks(observability.Combine(hooks...)),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// CreateSessions opens the agent state store: Redis when an address is
// configured, otherwise JSON files under StoreDir. The returned function
// releases the store.
func CreateSessions(opts Options, logger *slog.Logger) (*session.Manager, func() error, error) {
	mws, err := storeMiddleware(opts)
	if err != nil {
		return nil, nil, err
	}

	if opts.RedisAddr != "" {
		store := redis.New(opts.RedisAddr, "", 0)
		if err := store.Client().Ping(context.Background()).Err(); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		locker := redis.NewLocker(store.Client(), "htn:lock:")
		mgr := session.NewManager(middleware.Chain(store, mws...), session.WithLocker(locker), session.WithLogger(logger))
		return mgr, store.Close, nil
	}

	var store ports.StateStore = file.NewStore(opts.StoreDir)
	mgr := session.NewManager(middleware.Chain(store, mws...), session.WithLogger(logger))
	return mgr, func() error { return nil }, nil
}

func storeMiddleware(opts Options) ([]middleware.Middleware, error) {
	if opts.StateKey == "" {
		return nil, nil
	}
	active, err := middleware.ParseKey(opts.StateKey)
	if err != nil {
		return nil, fmt.Errorf("state key: %w", err)
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for _, raw := range opts.PreviousKeys {
		key, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("previous state key: %w", err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}

	enc, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	return []middleware.Middleware{enc}, nil
}
