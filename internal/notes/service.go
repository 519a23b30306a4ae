package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxTitleLen = 255

var (
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrInvalidTitle     = errors.New("title must be 1-255 characters")
	ErrStoreUnavailable = errors.New("notes store unavailable")
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(ctx context.Context, owner, title string) (*Note, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLen {
		return nil, ErrInvalidTitle
	}

	n := &Note{Owner: owner, Title: title}
	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, owner string) ([]Note, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrUnauthenticated
	}
	out, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if out == nil {
		out = []Note{}
	}
	return out, nil
}
