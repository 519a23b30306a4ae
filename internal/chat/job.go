package chat

import "time"

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is an asynchronous chat turn: the user message is already stored and
// a worker generates the reply.
type Job struct {
	ID string `gorm:"primaryKey;size:26"` // ULID length

	Owner string `gorm:"column:user_id;type:varchar(64);not null;index;index:uniq_job_owner_idempo,unique,priority:1"`

	Prompt        string `gorm:"type:text;not null"`
	UserMessageID uint64 `gorm:"not null"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_job_owner_idempo,unique,priority:2"`

	Status JobStatus `gorm:"type:varchar(16);index;not null"`

	// Filled when succeeded
	ResultMessageID *uint64

	// Filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string { return "chat_jobs" }
