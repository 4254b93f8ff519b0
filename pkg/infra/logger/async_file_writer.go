package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// queueDepth bounds the pending-line buffer. A full queue drops the
	// line rather than stalling an analyze request on disk I/O.
	queueDepth    = 1000
	flushInterval = 2 * time.Second
)

// AsyncFileWriter decouples moderation request handling from log file
// I/O: Write enqueues and returns immediately, a single goroutine
// drains the queue and flushes on a timer.
type AsyncFileWriter struct {
	writer  *bufio.Writer
	file    *os.File
	mu      sync.Mutex
	lines   chan []byte
	done    chan struct{}
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	aw := &AsyncFileWriter{
		writer: bufio.NewWriterSize(file, bufferSize),
		file:   file,
		lines:  make(chan []byte, queueDepth),
		done:   make(chan struct{}),
	}

	go aw.drain()

	return aw, nil
}

// Write never blocks; the line is copied because logrus reuses its
// serialization buffer.
func (aw *AsyncFileWriter) Write(p []byte) (n int, err error) {
	select {
	case aw.lines <- append([]byte{}, p...):
		return len(p), nil
	default:
		return 0, nil
	}
}

func (aw *AsyncFileWriter) drain() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case line := <-aw.lines:
			aw.mu.Lock()
			if _, err := aw.writer.Write(line); err != nil {
				fmt.Fprintln(os.Stderr, "error writing log line:", err)
			}
			aw.mu.Unlock()

		case <-ticker.C:
			aw.flush()

		case <-aw.done:
			aw.flush()
			return
		}
	}
}

func (aw *AsyncFileWriter) flush() {
	aw.mu.Lock()
	_ = aw.writer.Flush()
	aw.mu.Unlock()
}

func (aw *AsyncFileWriter) Close() {
	close(aw.done)
	_ = aw.file.Close()
}
