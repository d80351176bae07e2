package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiringStorage drops files older than a TTL.
type ExpiringStorage interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// JanitorTarget is one storage the janitor sweeps. A zero Retention uses the janitor's default.
type JanitorTarget struct {
	Name      string
	Storage   ExpiringStorage
	Retention time.Duration
}

// StorageJanitor removes staged uploads, generated receipts and idle dashboard boards past their retention.
type StorageJanitor struct {
	targets   []JanitorTarget
	retention time.Duration
	logger    *zap.Logger
}

// NewStorageJanitor builds a janitor over the named storages.
func NewStorageJanitor(retention time.Duration, logger *zap.Logger, targets ...JanitorTarget) *StorageJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &StorageJanitor{targets: targets, retention: retention, logger: logger}
}

// Sweep runs one cleanup pass and returns how many entries were removed.
func (j *StorageJanitor) Sweep() int {
	removed := 0
	for _, target := range j.targets {
		retention := target.Retention
		if retention <= 0 {
			retention = j.retention
		}
		deleted, err := target.Storage.CleanupOlderThan(retention)
		if err != nil {
			j.logger.Warn("storage cleanup failed", zap.String("storage", target.Name), zap.Error(err))
			continue
		}
		if len(deleted) > 0 {
			j.logger.Info("storage cleanup", zap.String("storage", target.Name), zap.Int("removed", len(deleted)))
		}
		removed += len(deleted)
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (j *StorageJanitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}
