package format

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/tracing"
)

// document is the on-disk shape of a format definition.
type document struct {
	FormatName string            `json:"format_name" yaml:"format_name" toml:"format_name"`
	Metadata   Metadata          `json:"metadata" yaml:"metadata" toml:"metadata"`
	Fields     []FieldDefinition `json:"fields" yaml:"fields" toml:"fields"`
}

// Extensions lists the definition file extensions Parse understands.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// IsDefinitionFile reports whether name has a definition extension.
func IsDefinitionFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Parse decodes a definition document. ext selects the decoder (".json",
// ".yaml", ".yml" or ".toml"); fallbackName names the format when the
// document has no format_name.
func Parse(ctx context.Context, data []byte, ext, fallbackName string, opts Options) (*Definition, error) {
	doc := document{Metadata: DefaultMetadata()}

	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s definition: %w", strings.TrimPrefix(ext, "."), err)
	}

	name := doc.FormatName
	if name == "" {
		name = fallbackName
	}
	if name == "" {
		name = "unknown"
	}
	return New(ctx, name, doc.Metadata, doc.Fields, opts)
}

// LoadFile reads a definition from disk. The file stem names the format when
// the document does not.
func LoadFile(ctx context.Context, filePath string, opts Options) (*Definition, error) {
	data, err := os.ReadFile(filepath.Clean(filePath)) // #nosec G304 -- user-supplied definition path
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return parseNamed(ctx, data, filePath, opts)
}

// LoadFS reads one definition from fsys.
func LoadFS(ctx context.Context, fsys fs.FS, name string, opts Options) (*Definition, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	return parseNamed(ctx, data, name, opts)
}

func parseNamed(ctx context.Context, data []byte, filePath string, opts Options) (*Definition, error) {
	ctx, span := tracing.Start(ctx, opts.Tracer, tracing.SpanFormatLoad+".file",
		attribute.String(tracing.AttrFormatFile, filePath))

	ext := filepath.Ext(filePath)
	stem := strings.TrimSuffix(filepath.Base(filePath), ext)
	def, err := Parse(ctx, data, ext, stem, opts)
	if err != nil {
		err = fmt.Errorf("%s: %w", filePath, err)
	}
	tracing.Finish(span, err)
	return def, err
}

// LoadDir loads every definition file directly under dir, keyed by format
// name. Two files declaring the same format name are an error.
func LoadDir(ctx context.Context, fsys fs.FS, dir string, opts Options) (map[string]*Definition, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read formats dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	defs := make(map[string]*Definition)
	sources := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !IsDefinitionFile(e.Name()) {
			continue
		}
		p := path.Join(dir, e.Name())
		def, err := LoadFS(ctx, fsys, p, opts)
		if err != nil {
			return nil, err
		}
		if prev, dup := sources[def.Name()]; dup {
			return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateFormat, def.Name(), prev, p)
		}
		defs[def.Name()] = def
		sources[def.Name()] = p
	}

	log.Debug(log.CatFormat, "Loaded formats directory", "dir", dir, "formats", len(defs))
	return defs, nil
}
