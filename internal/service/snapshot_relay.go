package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/course-viewer/internal/models"
	"github.com/noah-isme/course-viewer/pkg/jobs"
)

// SnapshotPublisher delivers a snapshot to an external channel.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap models.CourseSnapshot) error
}

// SnapshotRelay follows the course store and forwards every snapshot to a
// publisher through a retrying job queue, so a slow or failing channel never
// holds up store mutations.
type SnapshotRelay struct {
	courses   *CourseService
	publisher SnapshotPublisher
	queue     *jobs.Queue[models.CourseSnapshot]
	metrics   *MetricsService
	logger    *zap.Logger

	// mu guards the last version that reached the publisher. Retries are
	// requeued behind newer snapshots, so older ones are skipped on delivery.
	mu        sync.Mutex
	published bool
	last      uint64
}

// NewSnapshotRelay wires a relay between the course service and publisher.
func NewSnapshotRelay(courses *CourseService, publisher SnapshotPublisher, metrics *MetricsService, cfg jobs.QueueConfig) *SnapshotRelay {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := &SnapshotRelay{
		courses:   courses,
		publisher: publisher,
		metrics:   metrics,
		logger:    cfg.Logger,
	}
	r.queue = jobs.NewQueue[models.CourseSnapshot]("course-snapshots", r.deliver, cfg)
	return r
}

// Run forwards snapshots until ctx is cancelled. The snapshot current at
// start-up is forwarded too.
func (r *SnapshotRelay) Run(ctx context.Context) {
	r.queue.Start(ctx)
	defer r.queue.Stop()

	for snap := range r.courses.Subscribe(ctx) {
		job := jobs.Job[models.CourseSnapshot]{Key: fmt.Sprintf("v%d", snap.Version), Payload: snap}
		if err := r.queue.Enqueue(job); err != nil {
			r.logger.Warn("snapshot dropped", zap.Uint64("version", snap.Version), zap.Error(err))
			r.metrics.ObservePublish(err)
		}
	}
}

func (r *SnapshotRelay) deliver(ctx context.Context, job jobs.Job[models.CourseSnapshot]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.published && job.Payload.Version <= r.last {
		r.logger.Debug("stale snapshot skipped",
			zap.Uint64("version", job.Payload.Version),
			zap.Uint64("published", r.last),
			zap.Int("attempt", job.Attempt),
		)
		return nil
	}

	err := r.publisher.Publish(ctx, job.Payload)
	r.metrics.ObservePublish(err)
	if err != nil {
		return err
	}
	r.published = true
	r.last = job.Payload.Version
	return nil
}
