// Package server exposes stream segmentation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/reverie-dev/reverie/internal/data/db"
	"github.com/reverie-dev/reverie/internal/obs/otel"
	"github.com/reverie-dev/reverie/internal/reasoning"
)

// session holds one in-flight stream. Fragment feeding is serialized by mu
// so the segmenter only ever sees one writer.
type session struct {
	mu        sync.Mutex
	seg       *reasoning.Segmenter
	fragments int
	createdAt time.Time
}

// Server segments text streams submitted over HTTP.
type Server struct {
	host    string
	port    int
	table   *reasoning.TagTable
	archive *db.StreamStore
	tracker *otel.StreamTracker

	mu       sync.RWMutex
	sessions map[string]*session

	httpServer *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHost sets the listen host.
func WithHost(host string) ServerOption {
	return func(s *Server) {
		s.host = host
	}
}

// WithPort sets the listen port.
func WithPort(port int) ServerOption {
	return func(s *Server) {
		s.port = port
	}
}

// WithArchive stores finished streams in the given archive.
func WithArchive(store *db.StreamStore) ServerOption {
	return func(s *Server) {
		s.archive = store
	}
}

// WithTracker records stream metrics with the given tracker.
func WithTracker(tracker *otel.StreamTracker) ServerOption {
	return func(s *Server) {
		s.tracker = tracker
	}
}

// NewServer creates a Server segmenting with the given tag table.
func NewServer(table *reasoning.TagTable, opts ...ServerOption) *Server {
	s := &Server{
		host:     "127.0.0.1",
		port:     8088,
		table:    table,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	{
		v1.POST("/streams", s.handleCreateStream)
		v1.POST("/streams/:id/fragments", s.handleFeedFragment)
		v1.GET("/streams/:id/blocks", s.handleGetBlocks)
		v1.GET("/streams/:id/markup", s.handleGetMarkup)
		v1.POST("/streams/:id/finish", s.handleFinishStream)
		v1.DELETE("/streams/:id", s.handleCancelStream)
	}
	router.GET("/healthz", s.handleHealth)

	return router
}

// Start runs the HTTP server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.Addr(),
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("listening on http://%s", s.Addr())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) getSession(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// closeStream finishes the session's segmenter, archives the blocks, and
// records metrics. Cancellation uses the same path as a normal finish.
func (s *Server) closeStream(c *gin.Context, id string, sess *session, status string) []*reasoning.Block {
	sess.mu.Lock()
	sess.seg.Finish()
	blocks := sess.seg.Blocks()
	fragments := sess.fragments
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.ArchiveStream(id, blocks); err != nil {
			logrus.Warnf("failed to archive stream %s: %v", id, err)
		}
	}

	reasoningBlocks := 0
	thinkingSecs := 0
	for _, b := range blocks {
		if b.Kind == reasoning.KindReasoning {
			reasoningBlocks++
			thinkingSecs += b.DurationSeconds()
		}
	}
	s.tracker.RecordStream(c.Request.Context(), otel.StreamOptions{
		StreamID:        id,
		Fragments:       fragments,
		Blocks:          len(blocks),
		ReasoningBlocks: reasoningBlocks,
		ThinkingSeconds: thinkingSecs,
		Status:          status,
	})

	return blocks
}
