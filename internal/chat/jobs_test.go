package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/notechat/internal/ai"
)

func TestSubmitAsync_IdempotencyKey(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, _, _ := newTestService(t, 15, prov)
	ctx := context.Background()
	owner := uuid.NewString()
	key := "retry-1"

	first, created, err := svc.SubmitAsync(ctx, owner, "hello", &key)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, first.ID, 26)
	assert.Equal(t, JobQueued, first.Status)
	assert.NotZero(t, first.UserMessageID)

	again, created, err := svc.SubmitAsync(ctx, owner, "hello", &key)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	hist, err := svc.History(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, hist, 1, "repeated key must not store the message twice")

	// same key, other owner: independent job
	other, created, err := svc.SubmitAsync(ctx, uuid.NewString(), "hello", &key)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestSubmitAsync_WithoutKeyAlwaysCreates(t *testing.T) {
	svc, _, _ := newTestService(t, 15, &recordingProvider{reply: "ok"})
	ctx := context.Background()
	owner := uuid.NewString()

	a, _, err := svc.SubmitAsync(ctx, owner, "one", nil)
	require.NoError(t, err)
	b, _, err := svc.SubmitAsync(ctx, owner, "two", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestProcessJob_Succeeds(t *testing.T) {
	prov := &recordingProvider{reply: "hi there"}
	svc, _, _ := newTestService(t, 15, prov)
	ctx := context.Background()
	owner := uuid.NewString()

	job, _, err := svc.SubmitAsync(ctx, owner, "hello", nil)
	require.NoError(t, err)

	require.NoError(t, svc.ProcessJob(ctx, job.ID))

	got, err := svc.GetJob(ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobSucceeded, got.Status)
	require.NotNil(t, got.ResultMessageID)
	assert.Equal(t, []ai.Turn{{Role: ai.RoleUser, Text: "hello"}}, prov.last)

	// redelivery does not answer twice
	require.NoError(t, svc.ProcessJob(ctx, job.ID))
	assert.Equal(t, 1, prov.calls)

	hist, err := svc.History(ctx, owner)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, RoleAssistant, hist[1].Role)
	assert.Equal(t, *got.ResultMessageID, hist[1].ID)
}

func TestProcessJob_FailureMarksJob(t *testing.T) {
	prov := &recordingProvider{err: errors.New("boom")}
	svc, _, _ := newTestService(t, 15, prov)
	ctx := context.Background()
	owner := uuid.NewString()

	job, _, err := svc.SubmitAsync(ctx, owner, "hello", nil)
	require.NoError(t, err)

	err = svc.ProcessJob(ctx, job.ID)
	require.ErrorIs(t, err, ErrGeneration)

	got, err := svc.GetJob(ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "boom")
}

func TestProcessJob_Unknown(t *testing.T) {
	svc, _, _ := newTestService(t, 15, &recordingProvider{reply: "ok"})
	assert.ErrorIs(t, svc.ProcessJob(context.Background(), "01UNKNOWNJOB0000000000000"), ErrJobNotFound)
}

func TestGetJob_HidesOtherOwners(t *testing.T) {
	svc, _, _ := newTestService(t, 15, &recordingProvider{reply: "ok"})
	ctx := context.Background()
	owner := uuid.NewString()

	job, _, err := svc.SubmitAsync(ctx, owner, "hello", nil)
	require.NoError(t, err)

	_, err = svc.GetJob(ctx, uuid.NewString(), job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	require.NoError(t, svc.FailJob(ctx, job.ID, "enqueue failed"))
	got, err := svc.GetJob(ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
}

type blockingProvider struct {
	started chan struct{}
}

func (p *blockingProvider) Chat(ctx context.Context, _ []ai.Turn) (string, error) {
	close(p.started)
	<-ctx.Done()
	return "", ctx.Err()
}

func TestProcessJob_CancelledContextStillRecordsFailure(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	prov := &blockingProvider{started: make(chan struct{})}
	svc := NewService(repo, prov, 15)
	owner := uuid.NewString()

	job, _, err := svc.SubmitAsync(context.Background(), owner, "hello", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.ProcessJob(ctx, job.ID) }()

	<-prov.started
	cancel()
	err = <-done
	require.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := svc.GetJob(context.Background(), owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
}

func TestProcessJob_SkipsJobClaimedElsewhere(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, repo, _ := newTestService(t, 15, prov)
	ctx := context.Background()
	owner := uuid.NewString()

	job, _, err := svc.SubmitAsync(ctx, owner, "hello", nil)
	require.NoError(t, err)

	n, err := repo.UpdateJobStatusRunning(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, svc.ProcessJob(ctx, job.ID))
	assert.Equal(t, 0, prov.calls)

	got, err := svc.GetJob(ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobRunning, got.Status)

	hist, err := svc.History(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}
