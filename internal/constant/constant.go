package constant

import "path/filepath"

const (
	// AppName is the application name used in logs and metrics.
	AppName = "reverie"

	// DefaultConfigDirName is the per-user configuration directory.
	DefaultConfigDirName = ".reverie"

	// TagFileName holds the configured reasoning tag pairs.
	TagFileName = "tags.yaml"

	// DBFileName is the SQLite archive database file.
	DBFileName = "reverie.db"

	// LogFileName is the rotating log file.
	LogFileName = "reverie.log"
)

// GetDBFile returns the archive database path under baseDir.
func GetDBFile(baseDir string) string {
	return filepath.Join(baseDir, DBFileName)
}

// GetTagFile returns the tag configuration path under baseDir.
func GetTagFile(baseDir string) string {
	return filepath.Join(baseDir, TagFileName)
}

// GetLogFile returns the log file path under baseDir.
func GetLogFile(baseDir string) string {
	return filepath.Join(baseDir, "logs", LogFileName)
}
