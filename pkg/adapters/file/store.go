package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/htn/pkg/domain"
)

// Store implements ports.StateStore using the local filesystem.
// It keeps one JSON file per agent in a configured directory.
type Store struct {
	BasePath string
}

// NewStore creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".htn/agents".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".htn", "agents")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(agentID string) (string, error) {
	if agentID == "" {
		return "", errors.New("agentID cannot be empty")
	}
	if strings.ContainsAny(agentID, `/\`) || agentID == "." || agentID == ".." {
		return "", fmt.Errorf("invalid agentID %q", agentID)
	}
	return filepath.Join(s.BasePath, agentID+".json"), nil
}

// Save writes the state atomically: temp file in the same directory, fsync, rename.
func (s *Store) Save(ctx context.Context, agentID string, state domain.State) error {
	dest, err := s.path(agentID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+agentID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// Windows rename does not replace an existing destination.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace state file: %w", err)
		}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the agent's state file.
func (s *Store) Load(ctx context.Context, agentID string) (domain.State, error) {
	p, err := s.path(agentID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if state == nil {
		state = domain.State{}
	}
	return state, nil
}

// Delete removes the agent's state file. Deleting an unknown agent is not an error.
func (s *Store) Delete(ctx context.Context, agentID string) error {
	p, err := s.path(agentID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// List returns the IDs of all stored agents, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(ids)
	return ids, nil
}
