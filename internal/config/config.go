package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/magiconair/properties"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/termconf/internal/sysprop"
)

const (
	// ConfigurationKey names the override holding a file path or URL to load properties from.
	ConfigurationKey = "jline.configuration"
	// DefaultFileName is loaded from the user home directory when ConfigurationKey is unset.
	DefaultFileName = ".jline.rc"
)

// Origin identifies which layer answered a lookup.
type Origin int

const (
	// OriginUnset means no layer supplied a value.
	OriginUnset Origin = iota
	// OriginOverride is a definition or environment variable.
	OriginOverride
	// OriginFile is the loaded properties table.
	OriginFile
	// OriginDefault is the value passed by the caller.
	OriginDefault
)

func (o Origin) String() string {
	switch o {
	case OriginOverride:
		return "override"
	case OriginFile:
		return "file"
	case OriginDefault:
		return "default"
	default:
		return "unset"
	}
}

// Resolution is the outcome of a layered lookup.
type Resolution struct {
	Name   string
	Value  string
	Origin Origin
}

// Found reports whether any layer supplied a value.
func (r Resolution) Found() bool {
	return r.Origin != OriginUnset
}

// Store answers layered lookups: override namespace, then loaded properties, then caller default.
// Reads are lock-free; Reset swaps the loaded table atomically.
type Store struct {
	sys         sysprop.Lookuper
	opener      Opener
	logger      *zap.Logger
	userHomeDir func() (string, error)
	goos        string

	resetMu sync.Mutex
	table   atomic.Pointer[Table]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithSystemProperties sets the override namespace consulted before the properties file.
func WithSystemProperties(sys sysprop.Lookuper) Option {
	return func(s *Store) {
		s.sys = sys
	}
}

// WithOpener overrides how configuration sources are opened.
func WithOpener(opener Opener) Option {
	return func(s *Store) {
		s.opener = opener
	}
}

// WithUserHomeDir overrides the home directory fallback used when user.home is not defined.
func WithUserHomeDir(fn func() (string, error)) Option {
	return func(s *Store) {
		s.userHomeDir = fn
	}
}

// New creates a Store and loads its properties source. A source that cannot
// be read is logged and leaves the store with an empty table.
func New(opts ...Option) *Store {
	s := &Store{
		sys:         sysprop.New(),
		opener:      NewOpener(nil),
		logger:      zap.NewNop(),
		userHomeDir: os.UserHomeDir,
		goos:        runtime.GOOS,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.table.Store(s.load())
	return s
}

// Reset reloads the properties source and replaces the table. Lookups running
// concurrently see either the old or the new table, never a partial one.
func (s *Store) Reset() {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	s.logger.Debug("resetting configuration")
	s.table.Store(s.load())
}

// Properties returns the current table snapshot. It is shared, not copied,
// and has no mutators; call it again after Reset to observe reloaded values.
func (s *Store) Properties() *Table {
	return s.table.Load()
}

// Source returns the location the next load reads from.
func (s *Store) Source() Source {
	if raw, ok := s.sys.Lookup(ConfigurationKey); ok {
		return ParseSource(raw)
	}
	return FileSource(filepath.Join(s.UserHome(), DefaultFileName))
}

// Resolve performs a layered lookup without a default and reports which layer answered.
func (s *Store) Resolve(name string) (Resolution, error) {
	return s.resolve(name, "", false)
}

// Lookup returns the value for name and whether any layer defined it.
func (s *Store) Lookup(name string) (string, bool, error) {
	res, err := s.resolve(name, "", false)
	if err != nil {
		return "", false, err
	}
	return res.Value, res.Found(), nil
}

// GetString returns the value for name, or defaultValue when no layer defines it.
func (s *Store) GetString(name, defaultValue string) (string, error) {
	res, err := s.resolve(name, defaultValue, true)
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// GetBoolean returns defaultValue when name is undefined. A defined value is
// true when it is empty or equals "1", "on" or "true" ignoring case; any
// other value is false.
func (s *Store) GetBoolean(name string, defaultValue bool) (bool, error) {
	value, ok, err := s.Lookup(name)
	if err != nil {
		return defaultValue, err
	}
	if !ok {
		return defaultValue, nil
	}
	return parseBool(value), nil
}

// GetInteger returns defaultValue when name is undefined. A defined value that
// is not a base-10 32-bit integer yields an error wrapping ErrNumberFormat.
func (s *Store) GetInteger(name string, defaultValue int) (int, error) {
	value, ok, err := s.Lookup(name)
	if err != nil {
		return defaultValue, err
	}
	if !ok {
		return defaultValue, nil
	}

	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, numberFormatError(name, value, err)
	}
	return int(n), nil
}

// GetLong is the 64-bit counterpart of GetInteger.
func (s *Store) GetLong(name string, defaultValue int64) (int64, error) {
	value, ok, err := s.Lookup(name)
	if err != nil {
		return defaultValue, err
	}
	if !ok {
		return defaultValue, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, numberFormatError(name, value, err)
	}
	return n, nil
}

func (s *Store) resolve(name, defaultValue string, hasDefault bool) (Resolution, error) {
	if name == "" {
		return Resolution{}, ErrInvalidArgument
	}

	if value, ok := s.sys.Lookup(name); ok {
		return Resolution{Name: name, Value: value, Origin: OriginOverride}, nil
	}
	if value, ok := s.table.Load().Get(name); ok {
		return Resolution{Name: name, Value: value, Origin: OriginFile}, nil
	}
	if hasDefault {
		return Resolution{Name: name, Value: defaultValue, Origin: OriginDefault}, nil
	}
	return Resolution{Name: name, Origin: OriginUnset}, nil
}

// load reads the current source. Failures are logged and produce an empty table.
func (s *Store) load() *Table {
	src := s.Source()
	s.logger.Debug("loading properties", zap.Stringer("source", src))

	props, err := s.read(src)
	if err != nil {
		s.logger.Warn("unable to read configuration", zap.Stringer("source", src), zap.Error(err))
		return emptyTable()
	}

	table := newTable(props)
	if ce := s.logger.Check(zapcore.DebugLevel, "loaded properties"); ce != nil {
		ce.Write(zap.Stringer("source", src), zap.Int("count", table.Len()))
		for _, key := range table.Keys() {
			value, _ := table.Get(key)
			s.logger.Debug("property", zap.String("key", key), zap.String("value", value))
		}
	}
	return table
}

func (s *Store) read(src Source) (*properties.Properties, error) {
	rc, err := s.opener.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	buf, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	buf, skipped := normalizeLines(buf)
	if skipped > 0 {
		s.logger.Debug("skipped properties without a key", zap.Stringer("source", src), zap.Int("count", skipped))
	}

	loader := &properties.Loader{Encoding: properties.ISO_8859_1, DisableExpansion: true}
	props, err := loader.LoadBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return props, nil
}

func parseBool(value string) bool {
	return value == "" ||
		value == "1" ||
		strings.EqualFold(value, "on") ||
		strings.EqualFold(value, "true")
}

func numberFormatError(name, value string, err error) error {
	return fmt.Errorf("%w: %s=%q: %w", ErrNumberFormat, name, value, err)
}
