// Package iohelper provides helpers for safely reading HTTP response
// bodies with size limits.
package iohelper

import (
	"io"
	"log/slog"
)

// Standard body size limits for different use cases.
const (
	// SmallMaxBodySize is for header checks and status pages (8KB).
	SmallMaxBodySize int64 = 8 * 1024

	// DefaultMaxBodySize is for general responses (1MB).
	DefaultMaxBodySize int64 = 1024 * 1024
)

// ReadBody reads from r with a size limit. A nil reader returns an empty
// slice. The limit prevents memory exhaustion from maliciously large
// responses.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault reads from r with the default 1MB limit.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, DefaultMaxBodySize)
}

// ReadBodyOrLog reads the body using ReadBodyDefault and logs any error.
// Returns the bytes read so far, which may be nil on error.
func ReadBodyOrLog(r io.Reader, logger *slog.Logger) []byte {
	data, err := ReadBodyDefault(r)
	if err != nil && logger != nil {
		logger.Warn("body read failed", slog.String("error", err.Error()))
	}
	return data
}

// DrainAndClose drains any remaining bytes and closes the body so the
// underlying connection can be reused by the pool.
func DrainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(body, DefaultMaxBodySize))
	body.Close()
}
