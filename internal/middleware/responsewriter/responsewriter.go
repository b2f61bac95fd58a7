// Package responsewriter provides a response writer that remembers the status
// code written by the wrapped handler.
package responsewriter

import (
	"net/http"
)

// Recorder wraps a http.ResponseWriter and records the response status.
type Recorder struct {
	http.ResponseWriter

	status  int
	written bool
}

// Wrap returns a recorder for w. Handlers that never call WriteHeader
// are reported with http.StatusOK.
func Wrap(w http.ResponseWriter) *Recorder {
	return &Recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *Recorder) WriteHeader(status int) {
	if !r.written {
		r.status = status
		r.written = true
	}

	r.ResponseWriter.WriteHeader(status)
}

func (r *Recorder) Write(b []byte) (int, error) {
	r.written = true
	return r.ResponseWriter.Write(b)
}

// Status is the first status written to the response.
func (r *Recorder) Status() int {
	return r.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *Recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
