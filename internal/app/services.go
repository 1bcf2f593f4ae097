package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tunnelctl/internal/backend"
	"tunnelctl/internal/events"
	"tunnelctl/internal/mcpapi"
	"tunnelctl/internal/profile"
	"tunnelctl/internal/state"
	"tunnelctl/pkg/logging"
)

// Services holds all the initialized services and APIs
type Services struct {
	Bus        *events.DefaultBus
	Store      *state.Store
	Attachment *state.Attachment
	// Backend is nil when no backend command is configured or a replay is used.
	Backend *backend.Process
	Tools   *mcpapi.StateTools
	Config  *ConfigAdapter

	replayPath string
}

// InitializeServices creates the bus and the store and wires them together.
// Nothing runs until Start.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.TunnelctlConfig == nil {
		return nil, errors.New("configuration not loaded")
	}
	tc := cfg.TunnelctlConfig

	source, err := profile.NewFileSource(tc.Backend.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile source: %w", err)
	}
	logging.Debug("Services", "Reading profiles from %s", source.Path)

	opts := tc.StateOptions()
	opts.Source = source
	store := state.NewStore(opts)

	bus := events.NewBus()
	attachment := store.Attach(bus)

	var proc *backend.Process
	if cfg.ReplayPath == "" && len(tc.Backend.Command) > 0 {
		proc = backend.New(backend.Config{
			Command: tc.Backend.Command,
			Env:     tc.Backend.Env,
			WorkDir: tc.Backend.WorkDir,
		}, bus)
	}

	return &Services{
		Bus:        bus,
		Store:      store,
		Attachment: attachment,
		Backend:    proc,
		Tools:      mcpapi.NewStateTools(store, bus),
		Config:     NewConfigAdapter(tc, cfg.ConfigPath),
		replayPath: cfg.ReplayPath,
	}, nil
}

// Start loads the profiles in the background and starts the event source:
// the replay file when one is set, otherwise the backend when configured.
func (s *Services) Start(ctx context.Context) error {
	s.Store.LoadProfilesAsync(ctx)

	switch {
	case s.replayPath != "":
		f, err := os.Open(s.replayPath)
		if err != nil {
			return fmt.Errorf("failed to open replay file: %w", err)
		}
		go s.replay(ctx, f)
	case s.Backend != nil:
		if err := s.Backend.Start(ctx); err != nil {
			return fmt.Errorf("failed to start backend: %w", err)
		}
	default:
		logging.Info("Services", "No backend command configured, state stays idle")
	}
	return nil
}

func (s *Services) replay(ctx context.Context, f *os.File) {
	defer f.Close()
	logging.Info("Replay", "Replaying events from %s", f.Name())
	if err := events.NewStreamReader(s.Bus).Run(ctx, f); err != nil {
		if !errors.Is(err, context.Canceled) {
			logging.Error("Replay", err, "Replay of %s stopped", f.Name())
		}
		return
	}
	logging.Info("Replay", "Replay of %s finished", f.Name())
}

// Stop stops the backend and detaches the store from the bus.
func (s *Services) Stop() {
	if s.Backend != nil {
		if err := s.Backend.Stop(); err != nil {
			logging.Warn("Services", "Backend did not stop cleanly: %v", err)
		}
	}
	s.Attachment.Detach()
	s.Bus.Close()
}
