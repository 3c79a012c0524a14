package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/anm2edit/internal/anm2"
	"github.com/dshills/anm2edit/internal/logging"
)

// Store reads and writes script files. It implements anm2.Persistence.
type Store struct {
	gen    Generator
	logger *logging.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l.WithComponent("script")
	}
}

// NewStore creates a store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ anm2.Persistence = (*Store)(nil)

// Render returns the full file text for c and the checksum of its body.
func (s *Store) Render(c *anm2.Content) (string, string, error) {
	body, err := s.gen.Generate(c)
	if err != nil {
		return "", "", err
	}
	sum := Checksum(body)
	meta, err := EncodeMeta(c, sum)
	if err != nil {
		return "", "", err
	}
	return meta + "\n" + body, sum, nil
}

// Checksum returns the checksum of the body that would be saved for c.
func (s *Store) Checksum(c *anm2.Content) (string, error) {
	body, err := s.gen.Generate(c)
	if err != nil {
		return "", err
	}
	return Checksum(body), nil
}

// Load reads path. The returned checksum is computed over the body found
// on disk, not the one recorded in the metadata.
func (s *Store) Load(path string) (*anm2.Content, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read script: %w", err)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	line, body, _ := strings.Cut(text, "\n")
	c, recorded, err := DecodeMeta(line)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	sum := Checksum(body)
	if recorded != sum {
		s.logger.Warn("%s: body differs from recorded checksum", path)
	}
	s.logger.Debug("loaded %s: %d selectors", path, len(c.Selectors))
	return c, sum, nil
}

// Save writes c to path through a temp file in the same directory, so a
// failed write never leaves a truncated script behind.
func (s *Store) Save(path string, c *anm2.Content) (string, error) {
	text, sum, err := s.Render(c)
	if err != nil {
		return "", fmt.Errorf("failed to render script: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := writeFileSync(tempPath, []byte(text)); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.logger.Debug("saved %s (checksum %s)", path, sum)
	return sum, nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
