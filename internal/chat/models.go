package chat

import "time"

// Storage roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable conversation turn. Owner is the partition key
// and CreatedAt defines order; ID only breaks timestamp ties.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Owner     string    `gorm:"column:user_id;type:varchar(64);not null;index:idx_chat_msg_owner_created,priority:1" json:"-"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_chat_msg_owner_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "chat_messages" }
