package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

var (
	// ErrProjectNotFound is returned when no project file carries the id.
	ErrProjectNotFound = errors.New("project not found")
	// ErrOutsideRoot is returned for paths that leave the library directory.
	ErrOutsideRoot = errors.New("path outside project library")
)

// Entry describes one project file found by Scan.
type Entry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Format      Format      `json:"format"`
	Compression Compression `json:"compression,omitempty"`
	Size        int64       `json:"size"`
	ModTime     time.Time   `json:"modTime"`
}

// Library reads and writes project files under a root directory.
type Library struct {
	root    string
	pattern string
	logger  *zap.Logger
}

// New creates a library rooted at root.
func New(root string, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{root: root, pattern: scanPattern(), logger: logger}
}

// Root returns the library directory.
func (l *Library) Root() string {
	return l.root
}

// Pattern returns the glob used by Scan.
func (l *Library) Pattern() string {
	return l.pattern
}

func scanPattern() string {
	var suffixes []string
	for ext := range formatExts {
		suffixes = append(suffixes, strings.TrimPrefix(ext, "."))
		for cext := range compressionExts {
			suffixes = append(suffixes, strings.TrimPrefix(ext+cext, "."))
		}
	}
	sort.Strings(suffixes)
	return "**/*" + ProjectSuffix + ".{" + strings.Join(suffixes, ",") + "}"
}

// Contain makes path absolute and rejects anything outside the root. The
// check is lexical.
func (l *Library) Contain(path string) (string, error) {
	root, err := filepath.Abs(l.root)
	if err != nil {
		return "", fmt.Errorf("library root: %w", err)
	}
	if path, err = filepath.Abs(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutsideRoot, err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return path, nil
}

// Load reads a project file under the root.
func (l *Library) Load(path string) (types.ProjectSnapshot, error) {
	path, err := l.Contain(path)
	if err != nil {
		return types.ProjectSnapshot{}, err
	}

	format, _, err := Detect(path)
	if err != nil {
		return types.ProjectSnapshot{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.ProjectSnapshot{}, fmt.Errorf("%w: %s", ErrProjectNotFound, path)
		}
		return types.ProjectSnapshot{}, fmt.Errorf("read %s: %w", path, err)
	}

	f, err := decode(raw, format)
	if err != nil {
		return types.ProjectSnapshot{}, fmt.Errorf("load %s: %w", path, err)
	}

	doc, err := documentJSON(f.Document)
	if err != nil {
		return types.ProjectSnapshot{}, fmt.Errorf("load %s: %w", path, err)
	}

	id := f.ID
	if id == "" {
		id = projectIDFromName(path)
	}

	return types.ProjectSnapshot{ID: id, Name: f.Name, Path: path, Document: doc}, nil
}

// Save writes snap to path, or to <root>/<id>.project.json when path is
// empty. The path must lie under the root. Format and compression follow the file name. It returns the path
// written.
func (l *Library) Save(snap types.ProjectSnapshot, path string) (string, error) {
	if path == "" {
		path = snap.Path
	}
	if path == "" {
		path = filepath.Join(l.root, snap.ID+ProjectSuffix+".json")
	}
	path, err := l.Contain(path)
	if err != nil {
		return "", err
	}

	format, comp, err := Detect(path)
	if err != nil {
		return "", err
	}

	doc, err := documentValue(snap.Document)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	data, err := encode(file{ID: snap.ID, Name: snap.Name, Document: doc}, format, comp)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	l.logger.Debug("project saved",
		zap.String("project", snap.ID),
		zap.String("path", path),
		zap.String("format", string(format)),
	)
	return path, nil
}

// Scan lists every project file under the root. Unreadable files are
// logged and skipped. A missing root yields an empty list.
func (l *Library) Scan(ctx context.Context) ([]Entry, error) {
	if _, err := os.Stat(l.root); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		entries []Entry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, l.root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(l.pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		entry, err := l.entry(p, d)
		if err != nil {
			l.logger.Warn("skipping unreadable project file", zap.String("path", p), zap.Error(err))
			return nil
		}

		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", l.root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Find loads the project with the given id.
func (l *Library) Find(ctx context.Context, projectID string) (types.ProjectSnapshot, error) {
	entries, err := l.Scan(ctx)
	if err != nil {
		return types.ProjectSnapshot{}, err
	}
	for _, e := range entries {
		if e.ID == projectID {
			return l.Load(e.Path)
		}
	}
	return types.ProjectSnapshot{}, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
}

func (l *Library) entry(path string, d os.DirEntry) (Entry, error) {
	info, err := d.Info()
	if err != nil {
		return Entry{}, err
	}
	format, comp, err := Detect(path)
	if err != nil {
		return Entry{}, err
	}
	snap, err := l.Load(path)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:          snap.ID,
		Name:        snap.Name,
		Path:        path,
		Format:      format,
		Compression: comp,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

// projectIDFromName uses the file name up to the project suffix.
func projectIDFromName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, ProjectSuffix+"."); i > 0 {
		return base[:i]
	}
	return base
}
