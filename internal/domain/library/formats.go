package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
)

// ErrUnsupportedFormat is returned for files that are not project files.
var ErrUnsupportedFormat = errors.New("unsupported project file format")

// ProjectSuffix marks project files: name.project.json, name.project.yaml.gz ...
const ProjectSuffix = ".project"

// Format is the serialization of a project file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Compression wraps a serialized project file.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var formatExts = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
}

var compressionExts = map[string]Compression{
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
}

// file is the on-disk shape. Document is decoded generically so YAML and
// TOML files can carry it too.
type file struct {
	ID       string `json:"id" yaml:"id" toml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Document any    `json:"document,omitempty" yaml:"document,omitempty" toml:"document,omitempty"`
}

// Detect derives format and compression from a file name.
func Detect(name string) (Format, Compression, error) {
	base := strings.ToLower(filepath.Base(name))

	comp := CompressionNone
	if c, ok := compressionExts[filepath.Ext(base)]; ok {
		comp = c
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	format, ok := formatExts[filepath.Ext(base)]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if !strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), ProjectSuffix) {
		return "", "", fmt.Errorf("%w: %s is not a %s file", ErrUnsupportedFormat, name, ProjectSuffix)
	}
	return format, comp, nil
}

// encode serializes f in format and applies compression.
func encode(f file, format Format, comp Compression) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = sonic.MarshalIndent(f, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(f)
	case FormatTOML:
		data, err = toml.Marshal(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	switch comp {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnsupportedFormat, comp)
	}
}

// decode reverses encode. Compression is sniffed from content, so a
// renamed file still loads.
func decode(raw []byte, format Format) (file, error) {
	data, err := decompress(raw)
	if err != nil {
		return file{}, err
	}

	var f file
	switch format {
	case FormatJSON:
		err = sonic.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		err = toml.Unmarshal(data, &f)
	default:
		return file{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return file{}, fmt.Errorf("decode %s: %w", format, err)
	}
	return f, nil
}

func decompress(raw []byte) ([]byte, error) {
	mtype := mimetype.Detect(raw)

	switch {
	case mtype.Is("application/gzip"):
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return data, nil
	case mtype.Is("application/zstd"):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		data, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return data, nil
	default:
		return raw, nil
	}
}

// documentJSON converts a generically decoded document to JSON.
func documentJSON(doc any) (json.RawMessage, error) {
	if doc == nil {
		return json.RawMessage(`{}`), nil
	}
	data, err := sonic.Marshal(normalize(doc))
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return data, nil
}

// documentValue decodes a JSON document for re-encoding.
func documentValue(doc json.RawMessage) (any, error) {
	if len(doc) == 0 {
		return nil, nil
	}
	var v any
	if err := sonic.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return v, nil
}

// normalize turns map[any]any (YAML with non-string keys) into JSON-safe maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
