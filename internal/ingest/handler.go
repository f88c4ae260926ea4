// Package ingest forwards a stream of browser events to the seastate server.
// A host-side helper pipes newline-delimited JSON into `seastate ingest`.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/lazypower/seastate/internal/engine"
	"github.com/lazypower/seastate/internal/server"
	"github.com/lazypower/seastate/internal/store"
)

// Sink receives decoded events. *client.Client implements it.
type Sink interface {
	Healthy(ctx context.Context) bool
	Watch(ctx context.Context, req server.WatchRequest) (store.WatchEvent, error)
	Navigate(ctx context.Context, kind engine.NavigationKind) error
	AddSample(ctx context.Context, axis engine.Axis, weight float64) error
}

// Result counts what happened to each line.
type Result struct {
	Forwarded int
	Skipped   int
	Failed    int
}

// maxLine bounds a single event line. Longer lines are discarded.
const maxLine = 64 * 1024

// Handle reads events from r until EOF and forwards them to sink. Blank lines
// are ignored; malformed and over-long lines are skipped and logged; a failed
// forward is counted and the stream continues. If the server is down nothing
// is read.
func Handle(ctx context.Context, r io.Reader, sink Sink) (Result, error) {
	var res Result
	if !sink.Healthy(ctx) {
		return res, fmt.Errorf("server not reachable")
	}

	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		raw, tooLong, err := readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return res, fmt.Errorf("read input: %w", err)
		}
		eof := err != nil

		if tooLong {
			log.Printf("ingest: line %d: longer than %d bytes", n, maxLine)
			res.Skipped++
		} else if text := strings.TrimSpace(string(raw)); text != "" {
			handleLine(ctx, sink, n, text, &res)
		}

		if eof {
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
}

// readLine returns the next line without its line ending. A line longer than
// maxLine is consumed in full but not returned.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			// Allow room for a trailing "\r\n" before giving up.
			if len(line) > maxLine+2 {
				line, tooLong = nil, true
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > maxLine {
			line, tooLong = nil, true
		}
		return line, tooLong, err
	}
}

func handleLine(ctx context.Context, sink Sink, n int, text string, res *Result) {
	var in Input
	if err := json.Unmarshal([]byte(text), &in); err != nil {
		log.Printf("ingest: line %d: decode: %v", n, err)
		res.Skipped++
		return
	}
	if err := dispatch(ctx, sink, &in); err != nil {
		log.Printf("ingest: line %d: %s: %v", n, in.Type, err)
		if isInputError(err) {
			res.Skipped++
		} else {
			res.Failed++
		}
		return
	}
	res.Forwarded++
}

type inputError struct{ error }

func isInputError(err error) bool {
	_, ok := err.(inputError)
	return ok
}

func dispatch(ctx context.Context, sink Sink, in *Input) error {
	switch in.Type {
	case "watch":
		return handleWatch(ctx, sink, in)
	case "navigation":
		return handleNavigation(ctx, sink, in)
	case "sample":
		return handleSample(ctx, sink, in)
	default:
		return inputError{fmt.Errorf("unknown event type %q", in.Type)}
	}
}
