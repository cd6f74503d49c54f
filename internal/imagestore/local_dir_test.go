package imagestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func testLocalDir(t *testing.T) *LocalDir {
	t.Helper()
	dir, err := NewLocalDir(t.TempDir())
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	return dir
}

func TestLocalDirWriteExistsOpen(t *testing.T) {
	dir := testLocalDir(t)
	ctx := context.Background()

	n, err := dir.Write(ctx, "abc.png", bytes.NewBufferString("pixels"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != int64(len("pixels")) {
		t.Fatalf("expected %d bytes written, got %d", len("pixels"), n)
	}

	ok, err := dir.Exists(ctx, "abc.png")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatal("expected image to exist")
	}

	rc, err := dir.Open(ctx, "abc.png")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("expected pixels, got %q", string(data))
	}

	if _, err := os.Stat(filepath.Join(dir.Root(), "abc.png")); err != nil {
		t.Fatalf("expected file named after id: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir.Root(), tmpDirName))
	if err != nil {
		t.Fatalf("read tmp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected temp dir to be empty, got %d entries", len(entries))
	}
}

func TestLocalDirMissing(t *testing.T) {
	dir := testLocalDir(t)
	ctx := context.Background()

	ok, err := dir.Exists(ctx, "never-minted.jpg")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("expected missing image")
	}

	_, err = dir.Open(ctx, "never-minted.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if strings.Contains(err.Error(), dir.Root()) {
		t.Fatalf("error leaks filesystem path: %v", err)
	}
}

func TestLocalDirRejectsEscapingIDs(t *testing.T) {
	dir := testLocalDir(t)
	ctx := context.Background()

	outside := filepath.Join(filepath.Dir(dir.Root()), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	for _, id := range []string{"../secret.txt", "..", ".", "", "a/b.png", "tmp", ".hidden"} {
		if id == "tmp" {
			// The temp directory exists but is not a regular file.
			ok, err := dir.Exists(ctx, id)
			if err != nil || ok {
				t.Fatalf("expected tmp dir to not count as an image, ok=%v err=%v", ok, err)
			}
			if _, err := dir.Open(ctx, id); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for tmp dir, got %v", err)
			}
			continue
		}
		ok, err := dir.Exists(ctx, id)
		if err != nil {
			t.Fatalf("exists %q: %v", id, err)
		}
		if ok {
			t.Fatalf("expected %q to be rejected", id)
		}
		if _, err := dir.Open(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", id, err)
		}
		if _, err := dir.Write(ctx, id, bytes.NewBufferString("x")); err == nil {
			t.Fatalf("expected write of %q to fail", id)
		}
	}
}

func TestLocalDirConcurrentWrites(t *testing.T) {
	dir := testLocalDir(t)
	ctx := context.Background()
	const uploads = 20

	ids := make([]string, uploads)
	var wg sync.WaitGroup
	for i := 0; i < uploads; i++ {
		id, err := MintID("photo.jpg")
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		ids[i] = id
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := dir.Write(ctx, id, bytes.NewBufferString(id)); err != nil {
				t.Errorf("write %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		rc, err := dir.Open(ctx, id)
		if err != nil {
			t.Fatalf("open %s: %v", id, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", id, err)
		}
		if string(data) != id {
			t.Fatalf("expected content %q, got %q", id, string(data))
		}
	}
}

func TestNewLocalDirRequiresRoot(t *testing.T) {
	if _, err := NewLocalDir("  "); err == nil {
		t.Fatal("expected error for empty root")
	}
}
