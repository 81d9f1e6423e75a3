package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/reverie-dev/reverie/internal/reasoning"
)

type feedRequest struct {
	Fragment string `json:"fragment"`
}

type blockResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	TagStart     string `json:"tag_start,omitempty"`
	TagEnd       string `json:"tag_end,omitempty"`
	Content      string `json:"content"`
	Done         bool   `json:"done"`
	DurationSecs int    `json:"duration_secs"`
}

func toBlockResponse(b *reasoning.Block) blockResponse {
	return blockResponse{
		ID:           b.ID,
		Kind:         string(b.Kind),
		TagStart:     b.Pair.Start,
		TagEnd:       b.Pair.End,
		Content:      b.Content(),
		Done:         b.Done,
		DurationSecs: b.DurationSeconds(),
	}
}

func toBlockResponses(blocks []*reasoning.Block) []blockResponse {
	out := make([]blockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, toBlockResponse(b))
	}
	return out
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreateStream(c *gin.Context) {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &session{
		seg:       reasoning.NewSegmenter(s.table),
		createdAt: time.Now(),
	}
	s.mu.Unlock()

	logrus.Debugf("stream %s created", id)
	c.JSON(http.StatusCreated, gin.H{"stream_id": id})
}

func (s *Server) handleFeedFragment(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.getSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
		return
	}

	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess.mu.Lock()
	sess.seg.Feed(req.Fragment)
	sess.fragments++
	count := sess.seg.Store().Len()
	sess.mu.Unlock()

	s.tracker.RecordFragment(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"blocks": count})
}

func (s *Server) handleGetBlocks(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.getSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
		return
	}

	sess.mu.Lock()
	blocks := sess.seg.Blocks()
	resp := toBlockResponses(blocks)
	sess.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"stream_id": id,
		"blocks":    resp,
	})
}

func (s *Server) handleGetMarkup(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.getSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
		return
	}

	sess.mu.Lock()
	markup := reasoning.SerializeAll(sess.seg.Blocks())
	sess.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"stream_id": id,
		"markup":    markup,
	})
}

func (s *Server) handleFinishStream(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.getSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
		return
	}

	blocks := s.closeStream(c, id, sess, "finished")
	logrus.Debugf("stream %s finished with %d blocks", id, len(blocks))

	c.JSON(http.StatusOK, gin.H{
		"stream_id": id,
		"blocks":    toBlockResponses(blocks),
		"markup":    reasoning.SerializeAll(blocks),
	})
}

func (s *Server) handleCancelStream(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.getSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
		return
	}

	blocks := s.closeStream(c, id, sess, "canceled")
	logrus.Debugf("stream %s canceled with %d blocks", id, len(blocks))

	c.JSON(http.StatusOK, gin.H{
		"stream_id": id,
		"blocks":    toBlockResponses(blocks),
	})
}
