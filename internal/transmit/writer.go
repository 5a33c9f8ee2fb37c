package transmit

import (
	"context"
	"io"
	"os"
	"sync"
)

// WriterSink writes formatted programs to an io.Writer, one Write per program.
type WriterSink struct {
	name   string
	format string
	mu     sync.Mutex
	w      io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(name string, w io.Writer, format string) *WriterSink {
	return &WriterSink{name: name, format: format, w: w}
}

func (s *WriterSink) Name() string { return s.name }

func (s *WriterSink) Transmit(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(s.format, env)
	if err != nil {
		return &Error{Sink: s.name, Op: "encode", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return &Error{Sink: s.name, Op: "write", Err: err}
	}
	return nil
}

// FileSink appends formatted programs to a file. The file is opened and
// closed around every transmission so external tools can rotate it.
type FileSink struct {
	path   string
	format string
	mu     sync.Mutex
}

// NewFileSink creates a sink appending to path.
func NewFileSink(path, format string) *FileSink {
	return &FileSink{path: path, format: format}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Transmit(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(s.format, env)
	if err != nil {
		return &Error{Sink: s.Name(), Op: "encode", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &Error{Sink: s.Name(), Op: "open", Err: err}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return &Error{Sink: s.Name(), Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		return &Error{Sink: s.Name(), Op: "close", Err: err}
	}
	return nil
}
