package logging

import (
	"os"
	"sync"
)

// cappedFileWriter appends to a single log file and truncates it in place
// once it would exceed the cap. Crude, but keeps a long-running server
// from filling the disk without pulling in a rotation dependency.
type cappedFileWriter struct {
	path string
	cap  int64

	mu   sync.Mutex
	file *os.File
	size int64
}

func newCappedFileWriter(path string, maxMB int) (*cappedFileWriter, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	w := &cappedFileWriter{path: path, cap: int64(maxMB) * 1024 * 1024}
	if err := w.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *cappedFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		if err := w.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	if w.size+int64(len(p)) > w.cap {
		_ = w.file.Close()
		w.file = nil
		if err := w.open(os.O_TRUNC); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *cappedFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *cappedFileWriter) open(mode int) error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file = f
	w.size = info.Size()
	return nil
}
