package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrIncludeDepth indicates too many nested @include directives.
var ErrIncludeDepth = errors.New("include depth exceeded")

// MaxIncludeDepth bounds @include nesting.
const MaxIncludeDepth = 4

// TOMLLoader loads settings from TOML files.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a new TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom file system.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{
		fs:   fsys,
		path: path,
	}
}

// Path returns the file this loader reads.
func (l *TOMLLoader) Path() string {
	return l.path
}

// Load reads the configured path, following @include directives.
func (l *TOMLLoader) Load() (map[string]any, error) {
	return l.LoadWithIncludes(l.path, MaxIncludeDepth)
}

// LoadFrom reads a single file without following includes.
func (l *TOMLLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	return l.parse(path, data)
}

// LoadFromReader reads settings from an io.Reader.
func (l *TOMLLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	return l.parse("<reader>", data)
}

func (l *TOMLLoader) parse(source string, data []byte) (map[string]any, error) {
	var settings map[string]any
	if err := toml.Unmarshal(data, &settings); err != nil {
		pe := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			pe.Line, pe.Column = decodeErr.Position()
		}
		return nil, pe
	}

	return settings, nil
}

// LoadWithIncludes loads a TOML file and processes @include directives.
// Included files are lower priority than the including file.
func (l *TOMLLoader) LoadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepth, path)
	}

	settings, err := l.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, nil
	}

	includes, hasIncludes := settings["@include"]
	if !hasIncludes {
		return settings, nil
	}
	delete(settings, "@include")

	var includeList []string
	switch v := includes.(type) {
	case string:
		includeList = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("@include must be string or array of strings")
			}
			includeList = append(includeList, s)
		}
	default:
		return nil, fmt.Errorf("@include must be string or array of strings, got %T", includes)
	}

	baseDir := filepath.Dir(path)
	for _, inc := range includeList {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}

		incSettings, err := l.LoadWithIncludes(incPath, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		settings = DeepMerge(incSettings, settings)
	}

	return settings, nil
}

// ParseError represents an error while parsing a settings file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = srcVal
			continue
		}

		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			dst[key] = srcVal
		}
	}

	return dst
}

// Lookup returns the value at a dot-separated path such as "input.backend".
func Lookup(data map[string]any, path string) (any, bool) {
	current := data
	parts := splitPath(path)
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}
