package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCappedFileWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedFileWriter(path, 1)
	if err != nil {
		t.Fatalf("newCappedFileWriter: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("one\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("two\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Fatalf("file = %q", data)
	}
}

func TestCappedFileWriterTruncatesAtCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedFileWriter(path, 1)
	if err != nil {
		t.Fatalf("newCappedFileWriter: %v", err)
	}
	defer w.Close()

	big := bytes.Repeat([]byte("x"), 1024*1024-1)
	if _, err := w.Write(big); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("after-cap")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "after-cap" {
		t.Fatalf("file holds %d bytes, want only the post-truncate write", len(data))
	}
}

func TestCappedFileWriterReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedFileWriter(path, 1)
	if err != nil {
		t.Fatalf("newCappedFileWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := w.Write([]byte("again")); err != nil {
		t.Fatalf("Write after Close: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "again" {
		t.Fatalf("file = %q", data)
	}
}
