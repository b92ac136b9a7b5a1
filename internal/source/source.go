// Package source loads debt lists from TOML, JSON, or YAML files.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/zoonmattau/budgeter-sub000/internal/model"
)

// Errors returned by Load and Parse.
var (
	ErrUnsupportedFormat = errors.New("unsupported debts file format")
	ErrDuplicateID       = errors.New("duplicate debt id")
)

// Format identifies a debts file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is the on-disk shape of a debts file. ExtraPayment and Strategy
// are optional defaults that flags override.
type Document struct {
	ExtraPayment float64      `json:"extra_payment,omitempty" toml:"extra_payment,omitempty" yaml:"extra_payment,omitempty"`
	Strategy     string       `json:"strategy,omitempty" toml:"strategy,omitempty" yaml:"strategy,omitempty"`
	Debts        []model.Debt `json:"debts" toml:"debts" yaml:"debts"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and validates a debts file.
func Load(path string) (Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's flag
	if err != nil {
		return Document{}, fmt.Errorf("reading debts file: %w", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes data in the given format and validates the result.
// JSON input may also be a bare array of debts.
func Parse(data []byte, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return Document{}, fmt.Errorf("parsing toml: %w", err)
		}
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &doc.Debts); err != nil {
				return Document{}, fmt.Errorf("parsing json: %w", err)
			}
		} else if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("parsing json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("parsing yaml: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := Normalize(doc.Debts); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Normalize trims text fields, assigns a UUID to debts without an ID, and
// rejects duplicate IDs. It edits debts in place.
func Normalize(debts []model.Debt) error {
	seen := make(map[string]bool, len(debts))
	for i := range debts {
		d := &debts[i]
		d.ID = strings.TrimSpace(d.ID)
		d.Name = strings.TrimSpace(d.Name)
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = true

		if d.Balance < 0 || d.InterestRate < 0 || d.MinimumPayment < 0 {
			slog.Warn("negative amount will be treated as zero", "debt", d.Label())
		}
	}
	return nil
}

// Encode writes doc in the given format.
func Encode(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
