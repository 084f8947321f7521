package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/course-viewer/internal/models"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// SnapshotPublisher forwards course snapshots to a Redis pub/sub channel so
// other processes can mirror the store.
type SnapshotPublisher struct {
	client  redisPublisher
	channel string
	logger  *zap.Logger
}

// NewSnapshotPublisher constructs a publisher. A nil client, including a nil
// *redis.Client, yields a publisher that drops everything.
func NewSnapshotPublisher(client redisPublisher, channel string, logger *zap.Logger) *SnapshotPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c, ok := client.(*redis.Client); ok && c == nil {
		client = nil
	}
	return &SnapshotPublisher{client: client, channel: channel, logger: logger}
}

// Channel returns the pub/sub channel name.
func (p *SnapshotPublisher) Channel() string {
	return p.channel
}

// Publish marshals the snapshot and sends it to the channel.
func (p *SnapshotPublisher) Publish(ctx context.Context, snap models.CourseSnapshot) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %d: %w", snap.Version, err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}

	p.logger.Debug("snapshot published",
		zap.String("channel", p.channel),
		zap.Uint64("version", snap.Version),
		zap.Int64("receivers", receivers),
	)
	return nil
}
