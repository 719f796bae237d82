package library

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/GriffinCanCode/viewsync/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{"pages":[{"title":"Home","elements":[{"kind":"text","value":"Hi"}]}],"version":2}`

func sample(id string) types.ProjectSnapshot {
	return types.ProjectSnapshot{ID: id, Name: "Site " + id, Document: json.RawMessage(sampleDoc)}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		comp   Compression
		err    bool
	}{
		{"site.project.json", FormatJSON, CompressionNone, false},
		{"site.project.yml", FormatYAML, CompressionNone, false},
		{"Site.Project.YAML.GZ", FormatYAML, CompressionGzip, false},
		{"site.project.toml.zst", FormatTOML, CompressionZstd, false},
		{"site.json", "", "", true},
		{"site.project.xml", "", "", true},
		{"site.project", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, comp, err := Detect(tt.name)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.comp, comp)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	names := []string{
		"a.project.json",
		"b.project.yaml",
		"c.project.toml",
		"d.project.json.gz",
		"e.project.yml.zst",
		"f.project.toml.gz",
	}

	lib := New(t.TempDir(), nil)
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(lib.Root(), name)
			written, err := lib.Save(sample("p-"+name), path)
			require.NoError(t, err)
			assert.Equal(t, path, written)

			loaded, err := lib.Load(path)
			require.NoError(t, err)
			assert.Equal(t, "p-"+name, loaded.ID)
			assert.Equal(t, "Site p-"+name, loaded.Name)
			assert.Equal(t, path, loaded.Path)
			assert.JSONEq(t, sampleDoc, string(loaded.Document))
		})
	}
}

func TestSaveDefaultPath(t *testing.T) {
	lib := New(t.TempDir(), nil)

	written, err := lib.Save(sample("p1"), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Root(), "p1.project.json"), written)

	snap := sample("p2")
	snap.Path = filepath.Join(lib.Root(), "nested", "two.project.yaml")
	written, err = lib.Save(snap, "")
	require.NoError(t, err)
	assert.Equal(t, snap.Path, written)
}

func TestCompressionIsSniffed(t *testing.T) {
	lib := New(t.TempDir(), nil)
	gz := filepath.Join(lib.Root(), "x.project.json.gz")
	_, err := lib.Save(sample("x"), gz)
	require.NoError(t, err)

	renamed := filepath.Join(lib.Root(), "x.project.json")
	require.NoError(t, os.Rename(gz, renamed))

	loaded, err := lib.Load(renamed)
	require.NoError(t, err)
	assert.Equal(t, "x", loaded.ID)
}

func TestLoadErrors(t *testing.T) {
	lib := New(t.TempDir(), nil)

	_, err := lib.Load(filepath.Join(lib.Root(), "missing.project.json"))
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = lib.Load(filepath.Join(lib.Root(), "notes.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	bad := filepath.Join(lib.Root(), "bad.project.json")
	require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0o644))
	_, err = lib.Load(bad)
	assert.Error(t, err)
}

func TestPathsStayUnderRoot(t *testing.T) {
	base := t.TempDir()
	lib := New(filepath.Join(base, "projects"), nil)

	outside := filepath.Join(base, "secret.project.json")
	require.NoError(t, os.WriteFile(outside, []byte(`{"id":"s"}`), 0o644))

	for _, path := range []string{
		outside,
		filepath.Join(lib.Root(), "..", "secret.project.json"),
		lib.Root(),
		"/etc/passwd.project.json",
	} {
		_, err := lib.Load(path)
		assert.ErrorIs(t, err, ErrOutsideRoot, path)
	}

	_, err := lib.Save(sample("x"), outside)
	assert.ErrorIs(t, err, ErrOutsideRoot)

	snap := sample("y")
	snap.Path = filepath.Join(lib.Root(), "..", "y.project.json")
	_, err = lib.Save(snap, "")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	inside, err := lib.Contain(filepath.Join(lib.Root(), "a", "..", "b.project.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Root(), "b.project.json"), inside)
}

func TestLoadWithoutIDUsesFileName(t *testing.T) {
	lib := New(t.TempDir(), nil)
	path := filepath.Join(lib.Root(), "landing.project.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Landing"}`), 0o644))

	loaded, err := lib.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "landing", loaded.ID)
	assert.JSONEq(t, `{}`, string(loaded.Document))
}

func TestScanAndFind(t *testing.T) {
	lib := New(t.TempDir(), nil)
	ctx := context.Background()

	_, err := lib.Save(sample("one"), filepath.Join(lib.Root(), "one.project.json"))
	require.NoError(t, err)
	_, err = lib.Save(sample("two"), filepath.Join(lib.Root(), "deep", "er", "two.project.toml.zst"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(lib.Root(), "readme.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lib.Root(), "broken.project.json"), []byte("{nope"), 0o644))

	entries, err := lib.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	ids := []string{entries[0].ID, entries[1].ID}
	assert.ElementsMatch(t, []string{"one", "two"}, ids)
	for _, e := range entries {
		if e.ID == "two" {
			assert.Equal(t, FormatTOML, e.Format)
			assert.Equal(t, CompressionZstd, e.Compression)
		}
	}

	found, err := lib.Find(ctx, "two")
	require.NoError(t, err)
	assert.JSONEq(t, sampleDoc, string(found.Document))

	_, err = lib.Find(ctx, "three")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestScanMissingRoot(t *testing.T) {
	lib := New(filepath.Join(t.TempDir(), "absent"), nil)
	entries, err := lib.Scan(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPattern(t *testing.T) {
	lib := New(".", nil)
	assert.Contains(t, lib.Pattern(), "json.gz")
	assert.Contains(t, lib.Pattern(), "toml.zst")
}
