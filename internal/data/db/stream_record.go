package db

import (
	"time"
)

// BlockRecord stores one segmented block of an archived stream.
type BlockRecord struct {
	ID       uint   `gorm:"primaryKey;autoIncrement;column:id"`
	StreamID string `gorm:"column:stream_id;index:idx_reverie_blocks_stream_id;not null"`

	// BlockIndex is the block's position in the stream's emission order.
	BlockIndex int    `gorm:"column:block_index;not null"`
	BlockID    string `gorm:"column:block_id;size:36;not null"`
	Kind       string `gorm:"column:kind;index:idx_reverie_blocks_kind;not null"`

	// Tag literals that delimited the block; empty for plain blocks.
	TagStart string `gorm:"column:tag_start"`
	TagEnd   string `gorm:"column:tag_end"`

	Content      string    `gorm:"column:content;type:text"`
	StartedAt    time.Time `gorm:"column:started_at;not null"`
	EndedAt      time.Time `gorm:"column:ended_at"`
	DurationSecs int       `gorm:"column:duration_secs"`
	Done         bool      `gorm:"column:done;type:integer"`

	CreatedAt time.Time `gorm:"column:created_at;index:idx_reverie_blocks_created_at;not null"`
}

// TableName specifies the table name for GORM.
func (BlockRecord) TableName() string {
	return "reverie_blocks"
}

// StreamSummary aggregates one archived stream for listing.
type StreamSummary struct {
	StreamID        string    `json:"stream_id"`
	Blocks          int       `json:"blocks"`
	ReasoningBlocks int       `json:"reasoning_blocks"`
	ThinkingSecs    int       `json:"thinking_secs"`
	ArchivedAt      time.Time `json:"archived_at"`
}
