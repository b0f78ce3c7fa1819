package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/tfkr-ae/bridgelog/domain"
)

var _ domain.Sink = (*RepoSink)(nil)

// RepoSink writes entries straight into an activity repository,
// for deployments where the logger can reach the store directly.
type RepoSink struct {
	repo domain.ActivityRepository
	now  func() time.Time
}

func NewRepoSink(repo domain.ActivityRepository) *RepoSink {
	return &RepoSink{repo: repo, now: time.Now}
}

// Deliver implements domain.Sink.
func (s *RepoSink) Deliver(ctx context.Context, entry *domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	activity := &domain.Activity{Entry: *entry, ReceivedAt: s.now().UTC()}
	if err := s.repo.InsertActivity(activity); err != nil {
		return fmt.Errorf("storing entry %s : %w", entry.ID, err)
	}
	return nil
}
