package db

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reverie-dev/reverie/internal/constant"
	"github.com/reverie-dev/reverie/internal/reasoning"
)

// StreamStore archives segmented streams in SQLite using GORM.
type StreamStore struct {
	db     *gorm.DB
	dbPath string
	mu     sync.Mutex
}

// NewStreamStore creates or opens the archive database under baseDir.
func NewStreamStore(baseDir string) (*StreamStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	dbPath := constant.GetDBFile(baseDir)
	dsn := dbPath + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=1"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	store := &StreamStore{
		db:     gdb,
		dbPath: dbPath,
	}

	if err := gdb.AutoMigrate(&BlockRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive database: %w", err)
	}
	logrus.Debugf("stream archive ready at %s", dbPath)

	return store, nil
}

// ArchiveStream saves a completed stream's block sequence in one
// transaction. Archiving the same stream twice is rejected.
func (s *StreamStore) ArchiveStream(streamID string, blocks []*reasoning.Block) error {
	if streamID == "" {
		return errors.New("stream id cannot be empty")
	}
	if len(blocks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing int64
	if err := s.db.Model(&BlockRecord{}).Where("stream_id = ?", streamID).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check for existing archive: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("stream %s is already archived", streamID)
	}

	now := time.Now().UTC()
	records := make([]*BlockRecord, 0, len(blocks))
	for i, b := range blocks {
		records = append(records, &BlockRecord{
			StreamID:     streamID,
			BlockIndex:   i,
			BlockID:      b.ID,
			Kind:         string(b.Kind),
			TagStart:     b.Pair.Start,
			TagEnd:       b.Pair.End,
			Content:      b.Content(),
			StartedAt:    b.StartedAt,
			EndedAt:      b.EndedAt,
			DurationSecs: b.DurationSeconds(),
			Done:         b.Done,
			CreatedAt:    now,
		})
	}

	return s.db.Create(records).Error
}

// BlocksForStream returns the archived blocks of one stream in emission order.
func (s *StreamStore) BlocksForStream(streamID string) ([]BlockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []BlockRecord
	err := s.db.Where("stream_id = ?", streamID).
		Order("block_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load archived blocks: %w", err)
	}
	return records, nil
}

// RecentStreams returns summaries of the most recently archived streams.
func (s *StreamStore) RecentStreams(limit int) ([]StreamSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var summaries []StreamSummary
	err := s.db.Model(&BlockRecord{}).
		Select("stream_id, " +
			"COUNT(*) AS blocks, " +
			"SUM(CASE WHEN kind = 'reasoning' THEN 1 ELSE 0 END) AS reasoning_blocks, " +
			"SUM(CASE WHEN kind = 'reasoning' THEN duration_secs ELSE 0 END) AS thinking_secs, " +
			"MAX(created_at) AS archived_at").
		Group("stream_id").
		Order("archived_at DESC").
		Limit(limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list archived streams: %w", err)
	}
	return summaries, nil
}

// Close closes the underlying database connection.
func (s *StreamStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
