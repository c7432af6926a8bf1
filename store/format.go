package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tabrl/transition"
	"github.com/domino14/tabrl/value"
)

// Format names a document encoding.
type Format string

const (
	JSON   Format = "json"
	YAML   Format = "yaml"
	SQLite Format = "sqlite"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Encode writes doc to w. SQLite is not a stream format.
func Encode(w io.Writer, f Format, doc *Document) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: cannot stream %q", ErrUnknownFormat, f)
}

// Decode reads a document from r and checks its checksum.
func Decode(r io.Reader, f Format) (*Document, error) {
	doc := &Document{}
	var err error
	switch f {
	case JSON:
		err = json.NewDecoder(r).Decode(doc)
	case YAML:
		err = yaml.NewDecoder(r).Decode(doc)
	default:
		return nil, fmt.Errorf("%w: cannot stream %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := doc.Verify(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes the tables to w.
func Save(w io.Writer, f Format, vals *value.Table, trans *transition.Table) error {
	doc, err := NewDocument(vals, trans)
	if err != nil {
		return err
	}
	return Encode(w, f, doc)
}

// Load reads tables from r.
func Load(r io.Reader, f Format) (*value.Table, *transition.Table, error) {
	doc, err := Decode(r, f)
	if err != nil {
		return nil, nil, err
	}
	return doc.Tables()
}

// SaveFile writes the tables to path, choosing the format by extension.
// Stream formats go to a temporary file that is renamed into place, so an
// interrupted save never leaves a truncated document behind.
func SaveFile(ctx context.Context, path string, vals *value.Table, trans *transition.Table) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f == SQLite {
		return SaveSQLite(ctx, path, vals, trans)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := Save(tmp, f, vals, trans); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("states", vals.Len()).
		Int("transitions", trans.Len()).Msg("saved-tables")
	return nil
}

// LoadFile reads tables from path, choosing the format by extension.
func LoadFile(ctx context.Context, path string) (*value.Table, *transition.Table, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	if f == SQLite {
		return LoadSQLite(ctx, path)
	}
	fp, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer fp.Close()
	vals, trans, err := Load(fp, f)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("states", vals.Len()).
		Int("transitions", trans.Len()).Msg("loaded-tables")
	return vals, trans, nil
}
