package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/nebula/internal/core"
	"github.com/quantmind-br/nebula/internal/fsops"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const fileFormatVersion = 1

type fileEnvelope struct {
	Version  int           `json:"version"`
	Snapshot core.Snapshot `json:"snapshot"`
}

// FileStore keeps each mode in its own JSON file under dir
type FileStore struct {
	fs     afero.Fs
	dir    string
	logger *zerolog.Logger
}

// NewFileStore creates a file-backed store rooted at dir
func NewFileStore(fs afero.Fs, dir string, log *zerolog.Logger) *FileStore {
	return &FileStore{fs: fs, dir: dir, logger: nopIfNil(log)}
}

// Path returns the file that holds mode
func (s *FileStore) Path(mode core.Mode) string {
	return filepath.Join(s.dir, string(mode)+".json")
}

// Load reads the snapshot for mode. Unreadable content is reported as a miss.
func (s *FileStore) Load(_ context.Context, mode core.Mode) (*core.Snapshot, bool, error) {
	if err := checkMode(mode); err != nil {
		return nil, false, err
	}

	path := s.Path(mode)
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache file: %w", err)
	}

	snap, ok := s.decode(data, mode)
	if !ok {
		s.logger.Warn().Str("path", path).Msg("discarding unreadable cache file")
		return nil, false, nil
	}

	return snap, true, nil
}

func (s *FileStore) decode(data []byte, mode core.Mode) (*core.Snapshot, bool) {
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}
	if env.Version != fileFormatVersion || env.Snapshot.Mode != mode {
		return nil, false
	}
	if env.Snapshot.Records == nil {
		env.Snapshot.Records = []core.PackageRecord{}
	}
	return &env.Snapshot, true
}

// Save writes the snapshot to a temp file and renames it over the old one
func (s *FileStore) Save(_ context.Context, snap *core.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if err := checkMode(snap.Mode); err != nil {
		return err
	}

	data, err := json.Marshal(fileEnvelope{Version: fileFormatVersion, Snapshot: *snap})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := fsops.WriteFileAtomic(s.fs, s.Path(snap.Mode), data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	s.logger.Debug().
		Str("mode", string(snap.Mode)).
		Int("records", len(snap.Records)).
		Msg("cache stored")
	return nil
}

// Invalidate removes the file for mode
func (s *FileStore) Invalidate(_ context.Context, mode core.Mode) error {
	if err := checkMode(mode); err != nil {
		return err
	}
	return fsops.RemoveIfExists(s.fs, s.Path(mode))
}

// Status reports each mode's file
func (s *FileStore) Status(ctx context.Context) ([]Info, error) {
	infos := make([]Info, 0, len(core.Modes))
	for _, mode := range core.Modes {
		info := Info{Mode: mode, Location: s.Path(mode)}

		if st, err := s.fs.Stat(info.Location); err == nil {
			info.SizeBytes = st.Size()
		}

		snap, found, err := s.Load(ctx, mode)
		if err != nil {
			return nil, err
		}
		if found {
			info.Present = true
			info.CapturedAt = snap.CapturedAt
			info.Records = snap.Len()
		}

		infos = append(infos, info)
	}
	return infos, nil
}

// Close is a no-op for files
func (s *FileStore) Close() error {
	return nil
}
