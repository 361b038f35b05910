package session

import (
	"testing"
	"time"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	mock_feed "github.com/orgball2608/artfeed-bot/internal/feed/mocks"
	mock_identity "github.com/orgball2608/artfeed-bot/internal/identity/mocks"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestRegistry(t *testing.T) (*Registry, *mock_feed.MockFactory, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	factory := mock_feed.NewMockFactory(ctrl)
	r := NewRegistry(Opts{
		Accounts: mock_identity.NewMockAccounts(ctrl),
		Factory:  factory,
		Logger:   logger.NewNop(),
	})
	return r, factory, ctrl
}

func TestOpen_ReusesEntry(t *testing.T) {
	r, factory, ctrl := newTestRegistry(t)
	store := mock_feed.NewMockStore(ctrl)
	factory.EXPECT().New(gomock.Any()).Return(store).Times(1)

	first := r.Open("chat:1", nil)
	second := r.Open("chat:1", nil)

	assert.Same(t, first, second)
	assert.Equal(t, 1, r.Len())

	_, ok := first.Identity.CurrentActor()
	assert.False(t, ok)
}

func TestOpen_RestoresActor(t *testing.T) {
	r, factory, ctrl := newTestRegistry(t)
	factory.EXPECT().New(gomock.Any()).Return(mock_feed.NewMockStore(ctrl))

	e := r.Open("api:u1", &domain.Actor{ID: "u1", DisplayName: "mira"})

	actor, ok := e.Identity.CurrentActor()
	require.True(t, ok)
	assert.Equal(t, "u1", actor.ID)
}

func TestClose_ClosesFeed(t *testing.T) {
	r, factory, ctrl := newTestRegistry(t)
	store := mock_feed.NewMockStore(ctrl)
	factory.EXPECT().New(gomock.Any()).Return(store)
	store.EXPECT().Close()

	r.Open("chat:1", nil)
	r.Close("chat:1")
	r.Close("chat:1")

	assert.Zero(t, r.Len())
}

func TestEvictIdle(t *testing.T) {
	r, factory, ctrl := newTestRegistry(t)
	idle := mock_feed.NewMockStore(ctrl)
	active := mock_feed.NewMockStore(ctrl)
	factory.EXPECT().New(gomock.Any()).Return(idle)
	factory.EXPECT().New(gomock.Any()).Return(active)
	idle.EXPECT().Close()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	r.Open("chat:idle", nil)

	now = now.Add(20 * time.Minute)
	r.Open("chat:active", nil)

	now = now.Add(15 * time.Minute)
	evicted := r.EvictIdle(30 * time.Minute)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, r.Len())
}
