package shared

import (
	"context"
	"net/http"
)

// CommitWriter wraps a ResponseWriter so the session is committed right
// before the response header goes out, while cookies can still be set.
type CommitWriter struct {
	http.ResponseWriter
	ctx           context.Context
	manager       *SessionManager
	sess          *Session
	onError       func(error)
	headerWritten bool
}

// NewCommitWriter returns a CommitWriter for sess. onError may be nil.
func (sm *SessionManager) NewCommitWriter(ctx context.Context, w http.ResponseWriter, sess *Session, onError func(error)) *CommitWriter {
	return &CommitWriter{ResponseWriter: w, ctx: ctx, manager: sm, sess: sess, onError: onError}
}

// WriteHeader commits the session, then writes the status code.
func (w *CommitWriter) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		if err := w.manager.Commit(w.ctx, w.ResponseWriter, w.sess); err != nil && w.onError != nil {
			w.onError(err)
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write commits the session on the first write.
func (w *CommitWriter) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// Finish commits the session when the handler wrote nothing.
func (w *CommitWriter) Finish() {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *CommitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
