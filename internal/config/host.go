package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	userHomeKey      = "user.home"
	osNameKey        = "os.name"
	inputEncodingKey = "input.encoding"
	ctypeEnv         = "LC_CTYPE"

	// defaultEncoding is the platform encoding; Go source and strings are UTF-8.
	defaultEncoding = "UTF-8"
)

// UserHome returns the user.home override or the OS home directory. The
// directory is not checked for existence; "" is returned when neither is known.
func (s *Store) UserHome() string {
	if home, ok := s.sys.Lookup(userHomeKey); ok {
		return home
	}

	home, err := s.userHomeDir()
	if err != nil {
		s.logger.Debug("user home directory unavailable", zap.Error(err))
		return ""
	}
	return home
}

// OSName returns the os.name override or the runtime OS, lower-cased.
func (s *Store) OSName() string {
	if name, ok := s.sys.Lookup(osNameKey); ok {
		return strings.ToLower(name)
	}
	return strings.ToLower(s.goos)
}

// Encoding returns the preferred text encoding name. LC_CTYPE values such as
// "en_US.UTF-8" yield the part after the first dot; otherwise input.encoding
// is consulted, then the platform default.
func (s *Store) Encoding() string {
	if ctype, ok := s.sys.Getenv(ctypeEnv); ok {
		if i := strings.IndexByte(ctype, '.'); i > 0 {
			return ctype[i+1:]
		}
	}
	if enc, ok := s.sys.Lookup(inputEncodingKey); ok {
		return enc
	}
	return defaultEncoding
}

// Charset resolves Encoding to a decoder using WHATWG encoding labels.
func (s *Store) Charset() (encoding.Encoding, error) {
	name := s.Encoding()
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownEncoding, name, err)
	}
	return enc, nil
}

// CharsetName returns the canonical label for enc, or "" when it has none.
func CharsetName(enc encoding.Encoding) string {
	name, err := htmlindex.Name(enc)
	if err != nil {
		return ""
	}
	return name
}
