package models

import "time"

const (
	UploadStatusPending   = "pending"
	UploadStatusCompleted = "completed"
)

// DeploymentPackage is a versioned snapshot archive stored in object storage.
type DeploymentPackage struct {
	ID           string
	Version      string
	StorageKey   string
	UploadStatus string
	CreatedAt    time.Time
}
