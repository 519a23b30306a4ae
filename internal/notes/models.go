package notes

import "time"

type Note struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Owner     string    `gorm:"column:user_id;type:varchar(64);not null;index:idx_notes_owner_created,priority:1" json:"-"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	CreatedAt time.Time `gorm:"index:idx_notes_owner_created,priority:2" json:"created_at"`
}

func (Note) TableName() string { return "notes" }
