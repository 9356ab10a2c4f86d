// Package storage keeps company logos in S3-compatible object storage.
package storage

import "time"

// Options conveys the upload destination.
type Options struct {
	Bucket    string
	KeyPrefix string
	// URLTTL bounds the lifetime of presigned download URLs.
	URLTTL time.Duration
}
