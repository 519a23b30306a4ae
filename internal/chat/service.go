package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/suPer8Hu/notechat/internal/ai"
	"github.com/suPer8Hu/notechat/internal/common"
	"gorm.io/gorm"
)

const DefaultContextWindowSize = 15

const jobStatusTimeout = 5 * time.Second

type Service struct {
	repo              *Repo
	provider          ai.Provider
	contextWindowSize int
}

func NewService(repo *Repo, provider ai.Provider, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = DefaultContextWindowSize
	}
	return &Service{repo: repo, provider: provider, contextWindowSize: contextWindowSize}
}

// WindowSize is K, the number of stored messages sent per generation call.
func (s *Service) WindowSize() int { return s.contextWindowSize }

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return ErrUnauthenticated
	}
	return nil
}

// SendMessage runs one synchronous turn: store the user text, build the
// window from the store, call the model, store and return the reply.
// A failure after the first insert leaves the user message without a reply.
func (s *Service) SendMessage(ctx context.Context, owner string, text string) (reply string, assistantMsgID uint64, err error) {
	if err := checkOwner(owner); err != nil {
		return "", 0, err
	}
	if strings.TrimSpace(text) == "" {
		return "", 0, ErrEmptyMessage
	}

	// 1) store user message
	userMsg := &Message{Owner: owner, Role: RoleUser, Text: text}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return "", 0, storeErr("insert user message", err)
	}

	// 2) window -> provider -> store reply
	return s.GenerateReply(ctx, owner)
}

// GenerateReply answers the conversation as currently stored. It is the
// second half of SendMessage and the body of an async job.
func (s *Service) GenerateReply(ctx context.Context, owner string) (string, uint64, error) {
	if err := checkOwner(owner); err != nil {
		return "", 0, err
	}

	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, owner, s.contextWindowSize)
	if err != nil {
		return "", 0, storeErr("list recent messages", err)
	}

	turns, err := s.ContextWindow(recentDesc)
	if err != nil {
		return "", 0, err
	}

	reply, err := s.provider.Chat(ctx, turns)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyCompletion) {
			return "", 0, fmt.Errorf("%w: %w", ErrEmptyReply, err)
		}
		return "", 0, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", 0, ErrEmptyReply
	}

	assistantMsg := &Message{Owner: owner, Role: RoleAssistant, Text: reply}
	if err := s.repo.InsertMessage(ctx, assistantMsg); err != nil {
		return "", 0, storeErr("insert assistant message", err)
	}
	return reply, assistantMsg.ID, nil
}

// ContextWindow builds the turns for a newest-first page. An empty page
// means the user message was not visible to the read, which the store
// must never allow.
func (s *Service) ContextWindow(newestFirst []Message) ([]ai.Turn, error) {
	if len(newestFirst) == 0 {
		return nil, storeErr("list recent messages", errors.New("no messages visible after insert"))
	}
	return BuildContextWindow(newestFirst), nil
}

func (s *Service) History(ctx context.Context, owner string) ([]Message, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListHistory(ctx, owner)
	if err != nil {
		return nil, storeErr("list history", err)
	}
	return msgs, nil
}

// NewChat deletes the whole conversation of owner. It is not reversible.
func (s *Service) NewChat(ctx context.Context, owner string) (int64, error) {
	if err := checkOwner(owner); err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteAllMessages(ctx, owner)
	if err != nil {
		return 0, storeErr("delete messages", err)
	}
	return n, nil
}

// SubmitAsync stores the user message and creates a queued job for it.
// created is false when key matched an earlier submission; nothing is
// stored again in that case.
func (s *Service) SubmitAsync(ctx context.Context, owner string, text string, key *string) (job *Job, created bool, err error) {
	if err := checkOwner(owner); err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, false, ErrEmptyMessage
	}

	if key != nil && *key != "" {
		existing, err := s.repo.GetJobByOwnerAndIdempotencyKey(ctx, owner, *key)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, storeErr("get job by idempotency key", err)
		}
	}

	userMsg := &Message{Owner: owner, Role: RoleUser, Text: text}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, false, storeErr("insert user message", err)
	}

	jobID, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}
	j := &Job{
		ID:             jobID,
		Owner:          owner,
		Prompt:         text,
		UserMessageID:  userMsg.ID,
		IdempotencyKey: key,
		Status:         JobQueued,
	}
	job, created, err = s.repo.CreateJobOrGetExisting(ctx, j)
	if err != nil {
		return nil, false, storeErr("create job", err)
	}
	return job, created, nil
}

// GetJob returns a job of owner. Jobs of other owners read as not found.
func (s *Service) GetJob(ctx context.Context, owner string, jobID string) (*Job, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, storeErr("get job", err)
	}
	if j.Owner != owner {
		return nil, ErrJobNotFound
	}
	return j, nil
}

// FailJob records a failure that happened outside ProcessJob, such as a
// publish error.
func (s *Service) FailJob(ctx context.Context, jobID string, reason string) error {
	if err := s.repo.MarkJobFailed(ctx, jobID, reason); err != nil {
		return storeErr("mark job failed", err)
	}
	return nil
}

// ProcessJob runs a queued job to completion. Only the delivery that moves
// the job from queued to running generates a reply, so redelivered or
// duplicated messages are a no-op.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	claimed, err := s.repo.UpdateJobStatusRunning(ctx, jobID)
	if err != nil {
		return storeErr("mark job running", err)
	}

	j, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrJobNotFound
		}
		return storeErr("get job", err)
	}
	if claimed == 0 && j.Status != JobQueued {
		return nil
	}

	_, assistantMsgID, err := s.GenerateReply(ctx, j.Owner)
	if err != nil {
		// ctx may be the reason for the failure; the status write must still land.
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobStatusTimeout)
		defer cancel()
		if markErr := s.repo.MarkJobFailed(mctx, jobID, err.Error()); markErr != nil {
			return errors.Join(err, storeErr("mark job failed", markErr))
		}
		return err
	}

	if err := s.repo.MarkJobSucceeded(ctx, jobID, assistantMsgID); err != nil {
		return storeErr("mark job succeeded", err)
	}
	return nil
}
