package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/configs"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Store persists raw search pages for debugging. A store without a directory
// is disabled and drops everything.
type Store struct {
	dir      string
	compress bool
	logger   *zap.Logger
}

func New(config *configs.Config, l *zap.Logger) *Store {
	return NewStore(
		WithDirectory(config.Dump.Dir),
		WithCompression(config.Dump.Compress),
		WithLogger(l),
	)
}

func NewStore(opts ...func(*Store)) *Store {

	s := &Store{
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func WithDirectory(dir string) func(*Store) {
	return func(s *Store) {
		s.dir = dir
	}
}

func WithCompression(enabled bool) func(*Store) {
	return func(s *Store) {
		s.compress = enabled
	}
}

func WithLogger(l *zap.Logger) func(*Store) {
	return func(s *Store) {
		s.logger = l.Named("Dump")
	}
}

func (s *Store) Enabled() bool {
	return len(s.dir) > 0
}

// Path returns the file a page is written to.
func (s *Store) Path(runID string, profile string, page int) string {

	name := fmt.Sprintf("%s-page-%d.json", unsafeChars.ReplaceAllString(profile, "_"), page)
	if s.compress {
		name += ".gz"
	}

	return filepath.Join(s.dir, runID, name)
}

func (s *Store) Save(runID string, profile string, page int, data []byte) (string, error) {

	if !s.Enabled() {
		return "", nil
	}

	path := s.Path(runID, profile, page)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return "", err
	}

	if !s.compress {
		err = os.WriteFile(path, data, 0o644)
		if err != nil {
			return "", err
		}

		s.logger.Debug("Saved page", zap.String("path", path))
		return path, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	zw.Name = filepath.Base(path)

	if _, err := zw.Write(data); err != nil {
		return "", err
	}

	if err := zw.Close(); err != nil {
		return "", err
	}

	s.logger.Debug("Saved page", zap.String("path", path))

	return path, nil
}
