package domain

import "time"

// DownloadGrant is a single-use, order-bound ticket for one stored file.
// The token is opaque; the file key never appears in any URL.
type DownloadGrant struct {
	Token     string
	OrderID   string
	FileKey   string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
