package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Format selects how reports are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnknownFormat is returned for format names other than text, json and yaml.
	ErrUnknownFormat = errors.New("unknown output format")
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// ValueReport is the result of a single typed lookup.
type ValueReport struct {
	Name   string `json:"name" yaml:"name"`
	Value  any    `json:"value" yaml:"value"`
	Origin string `json:"origin" yaml:"origin"`
}

// ExplainReport describes which layer answered a lookup.
type ExplainReport struct {
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Found  bool   `json:"found" yaml:"found"`
	Origin string `json:"origin" yaml:"origin"`
	Source string `json:"source" yaml:"source"`
}

// PropertiesReport lists the loaded properties table.
type PropertiesReport struct {
	Source     string            `json:"source" yaml:"source"`
	Properties map[string]string `json:"properties" yaml:"properties"`
}

// HostReport summarises the host environment queries.
type HostReport struct {
	UserHome string `json:"userHome" yaml:"user_home"`
	OSName   string `json:"osName" yaml:"os_name"`
	Encoding string `json:"encoding" yaml:"encoding"`
	Charset  string `json:"charset,omitempty" yaml:"charset,omitempty"`
	Source   string `json:"source" yaml:"source"`
}

type texter interface {
	writeText(w io.Writer) error
}

// Write renders v to w in the given format.
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		if t, ok := v.(texter); ok {
			return t.writeText(w)
		}
		_, err := fmt.Fprintln(w, v)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (r ValueReport) writeText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Value)
	return err
}

func (r ExplainReport) writeText(w io.Writer) error {
	if !r.Found {
		_, err := fmt.Fprintf(w, "%s is unset (source %s)\n", r.Name, r.Source)
		return err
	}
	_, err := fmt.Fprintf(w, "%s=%s (%s)\n", r.Name, r.Value, r.Origin)
	return err
}

func (r PropertiesReport) writeText(w io.Writer) error {
	keys := make([]string, 0, len(r.Properties))
	for k := range r.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := fmt.Fprintf(w, "# %s\n", r.Source); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, r.Properties[k]); err != nil {
			return err
		}
	}
	return nil
}

func (r HostReport) writeText(w io.Writer) error {
	lines := [][2]string{
		{"user.home", r.UserHome},
		{"os.name", r.OSName},
		{"encoding", r.Encoding},
		{"charset", r.Charset},
		{"source", r.Source},
	}
	for _, line := range lines {
		if line[1] == "" && line[0] == "charset" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", line[0], line[1]); err != nil {
			return err
		}
	}
	return nil
}
