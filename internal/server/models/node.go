// Package models defines server-side data models persisted in the database.
package models

import "time"

// Node is one leaf of the realtime store tree.
type Node struct {
	// Path is the slash separated location, e.g. "content/nst_content_CBSE_10_math_ch-1".
	Path string
	// Value is the JSON document stored at Path.
	Value []byte
	// UpdatedAt is set by the database on every write.
	UpdatedAt time.Time
}
