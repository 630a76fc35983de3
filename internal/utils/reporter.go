package utils

import (
	"fmt"
	"io"
	"sync"
)

// Reporter emits formatted command output to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type flusher interface {
	Flush() error
}

// writerReporter serializes report lines and flushes buffered sinks after every line.
type writerReporter struct {
	writer io.Writer
	mutex  *sync.Mutex
}

// NewWriterReporter constructs a Reporter over the provided io.Writer.
// A nil writer yields a Reporter that discards output.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = io.Discard
	}
	return writerReporter{writer: writer, mutex: &sync.Mutex{}}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	if _, writeError := fmt.Fprintf(reporter.writer, format, args...); writeError != nil {
		return
	}
	if bufferedWriter, buffered := reporter.writer.(flusher); buffered {
		_ = bufferedWriter.Flush()
	}
}
