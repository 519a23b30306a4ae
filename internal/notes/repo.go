package notes

import (
	"context"

	"github.com/suPer8Hu/notechat/internal/db"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(gdb *gorm.DB) *Repo {
	return &Repo{db: gdb}
}

func (r *Repo) Migrate() error {
	return db.Migrate(r.db, &Note{})
}

func (r *Repo) Insert(ctx context.Context, n *Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByOwner returns notes newest -> oldest.
func (r *Repo) ListByOwner(ctx context.Context, owner string) ([]Note, error) {
	var out []Note
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
