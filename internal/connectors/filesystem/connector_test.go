package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
)

// fetchAll drains both channels of Fetch.
func fetchAll(t *testing.T, c *Connector, ctx context.Context) ([]domain.RawDocument, []error) {
	t.Helper()
	docsCh, errsCh := c.Fetch(ctx)
	var docs []domain.RawDocument
	var errs []error
	for docsCh != nil || errsCh != nil {
		select {
		case doc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			docs = append(docs, doc)
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			errs = append(errs, err)
		}
	}
	return docs, errs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConnector_Metadata(t *testing.T) {
	c := New("/courses")

	assert.Equal(t, "filesystem", c.Type())
	assert.Equal(t, "/courses", c.Name())
	assert.True(t, c.Capabilities().SupportsWatch)
	assert.False(t, c.Capabilities().RequiresAuth)

	var _ driven.DocumentSource = c
}

func TestConnector_Validate(t *testing.T) {
	dir := t.TempDir()
	course := filepath.Join(dir, "course1.txt")
	image := filepath.Join(dir, "logo.png")
	writeFile(t, course, "Course Title: X")
	writeFile(t, image, "png")

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "directory", path: dir},
		{name: "supported file", path: course},
		{name: "missing path", path: filepath.Join(dir, "missing"), wantErr: domain.ErrNotFound},
		{name: "unsupported file", path: image, wantErr: domain.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.path).Validate(context.Background())
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := New(dir).Validate(ctx)

		assert.Equal(t, context.Canceled, err)
	})
}

func TestConnector_Fetch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "course1.txt"), "Course Title: A")
	writeFile(t, filepath.Join(dir, "nested", "course2.md"), "Course Title: B")
	writeFile(t, filepath.Join(dir, "notes.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "logo.png"), "png")
	writeFile(t, filepath.Join(dir, ".draft.txt"), "hidden")
	writeFile(t, filepath.Join(dir, ".git", "HEAD.txt"), "hidden")

	docs, errs := fetchAll(t, New(dir), context.Background())

	assert.Empty(t, errs)
	byName := make(map[string]domain.RawDocument)
	for _, doc := range docs {
		byName[filepath.Base(doc.URI)] = doc
	}
	assert.Len(t, byName, 3)
	assert.Equal(t, "text/plain", byName["course1.txt"].MIMEType)
	assert.Equal(t, []byte("Course Title: A"), byName["course1.txt"].Content)
	assert.Equal(t, "text/markdown", byName["course2.md"].MIMEType)
	assert.Equal(t, "application/pdf", byName["notes.pdf"].MIMEType)
	assert.Equal(t, filepath.Join(dir, "nested", "course2.md"), byName["course2.md"].URI)
}

func TestConnector_Fetch_SingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course1.txt")
	writeFile(t, path, "Course Title: A")

	docs, errs := fetchAll(t, New(path), context.Background())

	assert.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Equal(t, path, docs[0].URI)
}

func TestConnector_Fetch_MissingRoot(t *testing.T) {
	docs, errs := fetchAll(t, New("/non/existent/path"), context.Background())

	assert.Empty(t, docs)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrNotFound)
	assert.Contains(t, errs[0].Error(), "does not exist")
}

func TestConnector_Fetch_EmptyDirectory(t *testing.T) {
	docs, errs := fetchAll(t, New(t.TempDir()), context.Background())

	assert.Empty(t, docs)
	assert.Empty(t, errs)
}

func TestConnector_Fetch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("course%d.txt", i)), "content")
	}
	ctx, cancel := context.WithCancel(context.Background())

	docsCh, errsCh := New(dir).Fetch(ctx)
	<-docsCh
	cancel()

	// Both channels close once the walk observes the cancellation.
	for range docsCh {
	}
	for range errsCh {
	}
}

func TestConnector_Watch(t *testing.T) {
	waitFor := func(t *testing.T, changes <-chan domain.RawDocumentChange, want domain.ChangeType, name string) {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case change, ok := <-changes:
				require.True(t, ok, "changes channel closed")
				if change.Type == want && filepath.Base(change.Document.URI) == name {
					return
				}
			case <-timeout:
				t.Fatalf("timeout waiting for %v on %s", want, name)
			}
		}
	}

	t.Run("reports created documents", func(t *testing.T) {
		dir := t.TempDir()
		c := New(dir)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, filepath.Join(dir, "course3.txt"), "Course Title: C")

		waitFor(t, changes, domain.ChangeCreated, "course3.txt")
	})

	t.Run("reports modified documents", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "course1.txt")
		writeFile(t, path, "initial")
		c := New(dir)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, path, "modified")

		waitFor(t, changes, domain.ChangeUpdated, "course1.txt")
	})

	t.Run("reports deleted documents", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "course1.txt")
		writeFile(t, path, "delete me")
		c := New(dir)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))

		waitFor(t, changes, domain.ChangeDeleted, "course1.txt")
	})

	t.Run("missing root", func(t *testing.T) {
		changes, err := New("/non/existent/path").Watch(context.Background())

		assert.Nil(t, changes)
		assert.ErrorContains(t, err, "root path error")
	})

	t.Run("closed connector", func(t *testing.T) {
		c := New(t.TempDir())
		require.NoError(t, c.Close())

		changes, err := c.Watch(context.Background())

		assert.Nil(t, changes)
		assert.ErrorContains(t, err, "closed")
	})

	t.Run("closes channel on cancellation", func(t *testing.T) {
		c := New(t.TempDir())
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := c.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after cancellation")
		}
	})
}

func TestConnector_Close_Idempotent(t *testing.T) {
	c := New(t.TempDir())

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		create     bool
		op         fsnotify.Op
		wantChange bool
		wantType   domain.ChangeType
	}{
		{name: "create", file: "course1.txt", create: true, op: fsnotify.Create, wantChange: true, wantType: domain.ChangeCreated},
		{name: "write", file: "course1.txt", create: true, op: fsnotify.Write, wantChange: true, wantType: domain.ChangeUpdated},
		{name: "write with chmod", file: "course1.txt", create: true, op: fsnotify.Write | fsnotify.Chmod, wantChange: true, wantType: domain.ChangeUpdated},
		{name: "remove", file: "course1.txt", op: fsnotify.Remove, wantChange: true, wantType: domain.ChangeDeleted},
		{name: "rename", file: "course1.txt", op: fsnotify.Rename, wantChange: true, wantType: domain.ChangeDeleted},
		{name: "chmod only", file: "course1.txt", create: true, op: fsnotify.Chmod},
		{name: "hidden file", file: ".course1.txt", create: true, op: fsnotify.Create},
		{name: "unsupported type", file: "logo.png", create: true, op: fsnotify.Create},
		{name: "file already gone", file: "course1.txt", op: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if tt.create {
				writeFile(t, path, "content")
			}

			change := New(dir).handleFsEvent(fsnotify.Event{Name: path, Op: tt.op})

			if !tt.wantChange {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.wantType, change.Type)
			assert.Equal(t, path, change.Document.URI)
			assert.Equal(t, "text/plain", change.Document.MIMEType)
			if tt.wantType != domain.ChangeDeleted {
				assert.Equal(t, []byte("content"), change.Document.Content)
			}
		})
	}

	t.Run("directory create", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "week1.txt")
		require.NoError(t, os.Mkdir(sub, 0755))

		assert.Nil(t, New(dir).handleFsEvent(fsnotify.Event{Name: sub, Op: fsnotify.Create}))
	})
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{"file.hidden", false},
		{"directory.name/file", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}
