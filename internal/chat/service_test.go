package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/suPer8Hu/notechat/internal/ai"
	"gorm.io/gorm"
)

type recordingProvider struct {
	reply string
	err   error
	calls int
	last  []ai.Turn
}

func (p *recordingProvider) Chat(ctx context.Context, turns []ai.Turn) (string, error) {
	_ = ctx
	p.calls++
	// copy to avoid mutations
	p.last = append([]ai.Turn(nil), turns...)
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:chat_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := NewRepo(db).Migrate(); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestService(t *testing.T, window int, prov *recordingProvider) (*Service, *Repo, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	repo := NewRepo(db)
	return NewService(repo, prov, window), repo, db
}

func seed(t *testing.T, repo *Repo, owner string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		if err := repo.InsertMessage(context.Background(), &Message{
			Owner: owner,
			Role:  role,
			Text:  fmt.Sprintf("seed-%02d", i),
		}); err != nil {
			t.Fatalf("seed msg %d: %v", i, err)
		}
	}
}

func TestSendMessage_WritesUserAndAssistant(t *testing.T) {
	prov := &recordingProvider{reply: "hi there"}
	svc, _, db := newTestService(t, 15, prov)
	owner := uuid.NewString()

	reply, assistantID, err := svc.SendMessage(context.Background(), owner, "hello")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if assistantID == 0 {
		t.Fatalf("expected assistant message id to be set")
	}

	if len(prov.last) != 1 || prov.last[0] != (ai.Turn{Role: ai.RoleUser, Text: "hello"}) {
		t.Fatalf("unexpected window: %+v", prov.last)
	}

	var msgs []Message
	if err := db.Where("user_id = ?", owner).
		Order("created_at ASC").Order("id ASC").
		Find(&msgs).Error; err != nil {
		t.Fatalf("query messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Text != "hello" {
		t.Fatalf("unexpected user msg: role=%q text=%q", msgs[0].Role, msgs[0].Text)
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Text != "hi there" {
		t.Fatalf("unexpected assistant msg: role=%q text=%q", msgs[1].Role, msgs[1].Text)
	}
	if msgs[1].CreatedAt.Before(msgs[0].CreatedAt) {
		t.Fatalf("assistant reply stored before user message")
	}
}

func TestSendMessage_UsesContextWindow(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	window := 15
	svc, repo, _ := newTestService(t, window, prov)
	owner := uuid.NewString()

	// 15 prior messages; the 16th is sent now
	seed(t, repo, owner, 15)

	if _, _, err := svc.SendMessage(context.Background(), owner, "new"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	if len(prov.last) != window {
		t.Fatalf("expected provider to receive %d turns, got %d", window, len(prov.last))
	}
	last := prov.last[len(prov.last)-1]
	if last.Role != ai.RoleUser || last.Text != "new" {
		t.Fatalf("expected last turn to be new user msg, got role=%q text=%q", last.Role, last.Text)
	}
	// seed-00 is the oldest and falls out of the window
	if prov.last[0].Text != "seed-01" || prov.last[0].Role != ai.RoleModel {
		t.Fatalf("expected window to start at seed-01 (model), got %+v", prov.last[0])
	}
	for i := 0; i < window-1; i++ {
		want := fmt.Sprintf("seed-%02d", i+1)
		if prov.last[i].Text != want {
			t.Fatalf("turn %d: expected %q, got %q", i, want, prov.last[i].Text)
		}
	}
}

func TestSendMessage_NewChatResetsWindow(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, repo, _ := newTestService(t, 15, prov)
	owner := uuid.NewString()
	seed(t, repo, owner, 40)

	n, err := svc.NewChat(context.Background(), owner)
	if err != nil {
		t.Fatalf("new chat: %v", err)
	}
	if n != 40 {
		t.Fatalf("expected 40 deleted rows, got %d", n)
	}

	if _, _, err := svc.SendMessage(context.Background(), owner, "fresh"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if len(prov.last) != 1 || prov.last[0].Text != "fresh" {
		t.Fatalf("expected single-turn window, got %+v", prov.last)
	}
}

func TestSendMessage_OwnersAreIsolated(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, repo, _ := newTestService(t, 15, prov)
	alice, bob := uuid.NewString(), uuid.NewString()
	seed(t, repo, alice, 6)

	if _, _, err := svc.SendMessage(context.Background(), bob, "bob here"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if len(prov.last) != 1 {
		t.Fatalf("bob saw %d turns, expected 1", len(prov.last))
	}

	if _, err := svc.NewChat(context.Background(), bob); err != nil {
		t.Fatalf("new chat: %v", err)
	}
	hist, err := svc.History(context.Background(), alice)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 6 {
		t.Fatalf("alice history touched: %d rows", len(hist))
	}
}

func TestSendMessage_RequiresOwner(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, _, _ := newTestService(t, 15, prov)

	_, _, err := svc.SendMessage(context.Background(), "", "hello")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if prov.calls != 0 {
		t.Fatalf("provider called without owner")
	}
}

func TestSendMessage_RejectsBlankText(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, _, _ := newTestService(t, 15, prov)

	_, _, err := svc.SendMessage(context.Background(), uuid.NewString(), "  \n")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestSendMessage_GenerationFailureLeavesUserMessage(t *testing.T) {
	prov := &recordingProvider{err: errors.New("upstream 500")}
	svc, _, _ := newTestService(t, 15, prov)
	owner := uuid.NewString()

	_, _, err := svc.SendMessage(context.Background(), owner, "hello")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}

	hist, err := svc.History(context.Background(), owner)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || hist[0].Role != RoleUser {
		t.Fatalf("expected only the user message to remain, got %+v", hist)
	}
}

func TestSendMessage_EmptyReplyIsGenerationFailure(t *testing.T) {
	for name, prov := range map[string]*recordingProvider{
		"blank":      {reply: "   "},
		"empty wire": {err: fmt.Errorf("gemini: %w", ai.ErrEmptyCompletion)},
	} {
		t.Run(name, func(t *testing.T) {
			svc, _, _ := newTestService(t, 15, prov)
			_, _, err := svc.SendMessage(context.Background(), uuid.NewString(), "hello")
			if !errors.Is(err, ErrEmptyReply) || !errors.Is(err, ErrGeneration) {
				t.Fatalf("expected ErrEmptyReply, got %v", err)
			}
		})
	}
}

func TestSendMessage_StoreUnavailable(t *testing.T) {
	prov := &recordingProvider{reply: "ok"}
	svc, _, db := newTestService(t, 15, prov)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	_ = sqlDB.Close()

	_, _, err = svc.SendMessage(context.Background(), uuid.NewString(), "hello")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if prov.calls != 0 {
		t.Fatalf("provider called after store failure")
	}
}

func TestNewService_WindowDefaults(t *testing.T) {
	for _, n := range []int{0, -1, 101} {
		if got := NewService(nil, nil, n).WindowSize(); got != DefaultContextWindowSize {
			t.Fatalf("window %d: expected default, got %d", n, got)
		}
	}
	if got := NewService(nil, nil, 3).WindowSize(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}
