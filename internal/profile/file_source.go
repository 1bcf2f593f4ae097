package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrDuplicateID is returned when a profile file lists the same ID twice.
var ErrDuplicateID = errors.New("duplicate profile id")

// DefaultFileName is the file the backend keeps its profiles in.
const DefaultFileName = "profiles.json"

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

// FileSource lists profiles from the backend-owned profile file. It never
// writes the file.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the given path. An empty path resolves to
// DefaultDir()/profiles.json and a leading "~/" to the home directory.
func NewFileSource(path string) (*FileSource, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := osUserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve profile directory: %w", err)
		}
		path = filepath.Join(dir, DefaultFileName)
	}
	return &FileSource{Path: path}, nil
}

// DefaultDir is the directory the backend stores profiles in.
func DefaultDir() (string, error) {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "autopaqet"), nil
	}
	home, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".autopaqet"), nil
}

// ListProfiles reads the full, ordered profile list. A missing file is an
// empty list, not an error.
func (s *FileSource) ListProfiles(ctx context.Context) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return []Profile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	profiles, err := Decode(data, formatFor(s.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiles from %s: %w", s.Path, err)
	}
	return profiles, nil
}

// Format selects the encoding of a profile file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a profile list and checks that IDs are unique.
func Decode(data []byte, format Format) ([]Profile, error) {
	var profiles []Profile
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &profiles)
	default:
		err = json.Unmarshal(data, &profiles)
	}
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []Profile{}
	}

	seen := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return profiles, nil
}
