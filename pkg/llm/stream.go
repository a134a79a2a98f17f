package llm

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
)

// ErrStreamClosed is returned by Recv after Close has been called.
var ErrStreamClosed = errors.New("stream closed")

// Provider is a chat completion backend that answers in streaming mode.
type Provider interface {
	// Stream starts a streaming completion. The returned Stream must be closed
	// by the caller.
	Stream(ctx context.Context, req CompletionRequest) (Stream, error)
}

// Stream is a lazy, finite, non-restartable sequence of text chunks.
type Stream interface {
	// Recv returns the next non-empty chunk, or io.EOF once the stream is done.
	Recv() (string, error)

	// Close releases the underlying connection.
	Close() error
}

// Chunks adapts s into a range-over-func sequence. Iteration stops after the
// first error; io.EOF is not reported.
func Chunks(s Stream) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			chunk, err := s.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Collect drains s and returns the concatenated text.
func Collect(s Stream) (string, error) {
	var sb strings.Builder
	for chunk, err := range Chunks(s) {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}

// SliceStream is a Stream over a fixed list of chunks, optionally ending in an error.
type SliceStream struct {
	chunks []string
	err    error
	pos    int
	closed bool
}

// NewSliceStream returns a Stream yielding chunks and then err (io.EOF when err is nil).
func NewSliceStream(chunks []string, err error) *SliceStream {
	return &SliceStream{chunks: chunks, err: err}
}

func (s *SliceStream) Recv() (string, error) {
	if s.closed {
		return "", ErrStreamClosed
	}
	for s.pos < len(s.chunks) {
		c := s.chunks[s.pos]
		s.pos++
		if c != "" {
			return c, nil
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}
