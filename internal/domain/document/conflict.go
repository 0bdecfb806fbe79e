package document

import "fmt"

// ConflictInfo describes a stamp divergence detected during a save.
type ConflictInfo struct {
	Description string `json:"description"`
	ServerStamp int64  `json:"serverTimestamp"`
	ClientStamp int64  `json:"clientTimestamp"`
}

// DetectConflict compares the stamp supplied by the caller against the
// stamp currently in storage. Equality is exact: a stale stamp from the
// same client counts as a conflict. Returns nil when the save may proceed.
func DetectConflict(clientStamp, serverStamp int64) *ConflictInfo {
	if clientStamp == serverStamp {
		return nil
	}
	return &ConflictInfo{
		Description: fmt.Sprintf("document was modified at %d but client last saw %d", serverStamp, clientStamp),
		ServerStamp: serverStamp,
		ClientStamp: clientStamp,
	}
}
