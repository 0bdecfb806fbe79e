package backup

import "time"

// Record describes one snapshot of a document file.
type Record struct {
	OriginalPath string `json:"filePath"`
	BackupPath   string `json:"backupPath"`
	Stamp        int64  `json:"timestamp"`
	Checksum     string `json:"checksum"`
	SizeBytes    int64  `json:"size"`
}

// Policy bounds how many snapshots are retained per file.
// Zero values mean unbounded.
type Policy struct {
	MaxPerFile int
	MaxAge     time.Duration
}
