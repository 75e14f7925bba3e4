package services_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"filmtrack/internal/events"
	"filmtrack/internal/services"
	"filmtrack/internal/storage"
	"filmtrack/internal/storage/storagetest"
	"filmtrack/internal/validation"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.FriendshipEvent
	err    error
}

func (p *recordingPublisher) PublishFriendshipEvent(_ context.Context, e events.FriendshipEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) last() events.FriendshipEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fixture struct {
	db        *gorm.DB
	publisher *recordingPublisher
	films     services.FilmService
	friends   services.FriendshipService
	users     services.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := storagetest.NewDB(t)
	log := zaptest.NewLogger(t)
	v := validation.New()
	userRepo := storage.NewGormUserRepository(db)
	pub := &recordingPublisher{}

	return &fixture{
		db:        db,
		publisher: pub,
		films:     services.NewFilmService(storage.NewGormFilmRepository(db), v, log),
		friends:   services.NewFriendshipService(userRepo, storage.NewGormFriendshipRepository(db), pub, 0, log),
		users:     services.NewUserService(userRepo, v, log),
	}
}

func ptr[T any](v T) *T {
	return &v
}
