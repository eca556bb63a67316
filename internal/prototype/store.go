package prototype

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is the prototype file schema version written by Save
const FormatVersion = 1

// DefaultModelPath is where trained prototypes are kept unless configured otherwise
const DefaultModelPath = "models/prototypes.msgpack"

// Metadata describes the extraction settings a table was trained with.
// Vectors are only comparable when they were produced the same way.
type Metadata struct {
	SampleRate      int       `json:"sample_rate" yaml:"sample_rate"`
	NumCoefficients int       `json:"n_mfcc" yaml:"n_mfcc"`
	Backend         string    `json:"backend" yaml:"backend"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// Model is a prototype table with its training metadata
type Model struct {
	Table    *Table   `json:"-" yaml:"-"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

type fileEntry struct {
	Label    string    `msgpack:"label"`
	Centroid []float64 `msgpack:"centroid"`
	Clips    int       `msgpack:"clips"`
}

type fileModel struct {
	Version    int         `msgpack:"version"`
	Dimension  int         `msgpack:"dimension"`
	SampleRate int         `msgpack:"sample_rate"`
	NMFCC      int         `msgpack:"n_mfcc"`
	Backend    string      `msgpack:"backend"`
	CreatedAt  time.Time   `msgpack:"created_at"`
	Entries    []fileEntry `msgpack:"entries"`
}

// Store persists a Model as a single msgpack file. Writers hold an exclusive
// lock on a sibling .lock file and replace the model atomically, so readers
// never observe a partially written table.
type Store struct {
	path   string
	lock   *flock.Flock
	logger logging.Logger
}

// NewStore creates a store for the model file at path
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultModelPath
	}
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
		logger: logging.WithFields(logging.Fields{
			"component": "prototype_store",
			"path":      path,
		}),
	}
}

// Path returns the model file location
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a model file is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save writes model, replacing any previous file
func (s *Store) Save(model *Model) error {
	if model == nil || model.Table.IsEmpty() {
		return fmt.Errorf("refusing to save an empty prototype table")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock model file: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("Failed to release model lock", logging.Fields{"error": err.Error()})
		}
	}()

	createdAt := model.Metadata.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	file := fileModel{
		Version:    FormatVersion,
		Dimension:  model.Table.Dimension(),
		SampleRate: model.Metadata.SampleRate,
		NMFCC:      model.Metadata.NumCoefficients,
		Backend:    model.Metadata.Backend,
		CreatedAt:  createdAt.UTC(),
	}
	for _, entry := range model.Table.Entries() {
		file.Entries = append(file.Entries, fileEntry(entry))
	}

	data, err := msgpack.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode prototypes: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prototypes-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary model file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace model file: %w", err)
	}

	s.logger.Info("Prototype model saved", logging.Fields{
		"labels":    len(file.Entries),
		"dimension": file.Dimension,
		"bytes":     len(data),
	})
	return nil
}

// Load reads and validates the model. Any reason the model cannot be used,
// including an absent file, is reported as a MissingModelError.
func (s *Store) Load() (*Model, error) {
	if err := s.lock.RLock(); err == nil {
		defer s.lock.Unlock()
	} else {
		s.logger.Debug("Reading model without shared lock", logging.Fields{"error": err.Error()})
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewMissingModelError(s.path, ErrCodeModelMissing, "no trained model; run train first", err)
		}
		return nil, NewMissingModelError(s.path, ErrCodeModelMissing, "cannot read model file", err)
	}

	var file fileModel
	if err := msgpack.Unmarshal(data, &file); err != nil {
		return nil, NewMissingModelError(s.path, ErrCodeModelCorrupt, "model file is corrupt", err)
	}
	if file.Version != FormatVersion {
		return nil, NewMissingModelError(s.path, ErrCodeModelCorrupt,
			fmt.Sprintf("unsupported model version %d (expected %d)", file.Version, FormatVersion), nil)
	}
	if len(file.Entries) == 0 {
		return nil, NewMissingModelError(s.path, ErrCodeModelEmpty, "model has no prototypes", nil)
	}

	entries := make([]Entry, len(file.Entries))
	for i, entry := range file.Entries {
		entries[i] = Entry(entry)
	}
	table, err := NewTable(entries)
	if err != nil {
		return nil, NewMissingModelError(s.path, ErrCodeModelCorrupt, "model failed validation", err)
	}
	if file.Dimension != table.Dimension() {
		return nil, NewMissingModelError(s.path, ErrCodeModelCorrupt,
			fmt.Sprintf("model declares dimension %d but centroids have %d", file.Dimension, table.Dimension()), nil)
	}

	s.logger.Debug("Prototype model loaded", logging.Fields{
		"labels":    table.Len(),
		"dimension": table.Dimension(),
	})

	return &Model{
		Table: table,
		Metadata: Metadata{
			SampleRate:      file.SampleRate,
			NumCoefficients: file.NMFCC,
			Backend:         file.Backend,
			CreatedAt:       file.CreatedAt,
		},
	}, nil
}
