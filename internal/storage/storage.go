package storage

import (
	"context"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// ReportStore archives exported goal reports in remote object storage.
type ReportStore interface {
	PutReport(ctx context.Context, key string, body []byte) (string, error)
	ListReports(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
