package commandimpl

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/feed"
	mock_feed "github.com/orgball2608/artfeed-bot/internal/feed/mocks"
	"github.com/orgball2608/artfeed-bot/internal/identity"
	"github.com/orgball2608/artfeed-bot/internal/identity/identityimpl"
	mock_identity "github.com/orgball2608/artfeed-bot/internal/identity/mocks"
	"github.com/orgball2608/artfeed-bot/internal/session"
	mock_telegram "github.com/orgball2608/artfeed-bot/internal/telegram/mocks"
	apperrors "github.com/orgball2608/artfeed-bot/pkg/errors"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const chatID int64 = 1001

var (
	testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	ana     = domain.Actor{ID: "u1", DisplayName: "ana"}
)

type fakeSessions struct {
	entry *session.Entry
	opens []string
}

func (f *fakeSessions) Open(key string, restore *domain.Actor) *session.Entry {
	f.opens = append(f.opens, key)
	if restore != nil {
		f.entry.Identity.Restore(*restore)
	}
	return f.entry
}

func (f *fakeSessions) Close(string) {}

type fixedLimiter bool

func (l fixedLimiter) Allow(string) bool { return bool(l) }

type fixture struct {
	cmd      *CommandImpl
	tg       *mock_telegram.MockClient
	store    *mock_feed.MockStore
	accounts *mock_identity.MockAccounts
	ident    *identityimpl.Session
	sessions *fakeSessions
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		tg:       mock_telegram.NewMockClient(ctrl),
		store:    mock_feed.NewMockStore(ctrl),
		accounts: mock_identity.NewMockAccounts(ctrl),
	}
	f.ident = identityimpl.NewSession(f.accounts)
	f.sessions = &fakeSessions{entry: &session.Entry{Identity: f.ident, Feed: f.store}}
	f.cmd = &CommandImpl{
		Telegram:       f.tg,
		Sessions:       f.sessions,
		Accounts:       f.accounts,
		Limiter:        fixedLimiter(true),
		Logger:         logger.NewNop(),
		maxUploadBytes: 1 << 20,
		now:            func() time.Time { return testNow },
	}
	return f
}

func (f *fixture) signIn() {
	f.ident.Restore(ana)
}

func (f *fixture) expectReply(text string) {
	f.tg.EXPECT().SendMessage(chatID, text).Return(1, nil)
}

func commandUpdate(text string) tgbotapi.Update {
	cmd, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 42,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func makePosts(n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			ID:                fmt.Sprintf("p%d", i+1),
			AuthorID:          "u2",
			AuthorDisplayName: "bo",
			ImageURL:          fmt.Sprintf("https://cdn.test/p%d.png", i+1),
			Transformation:    domain.TransformationOriginal,
			CreatedAt:         testNow.Add(-time.Hour),
			State:             domain.PostVisible,
		}
	}
	return posts
}

func TestHandleUpdate_Help(t *testing.T) {
	f := newFixture(t)
	f.expectReply(helpMessage)

	f.cmd.handleUpdate(context.Background(), commandUpdate("/help"))

	assert.Equal(t, []string{"tg:1001"}, f.sessions.opens)
}

func TestHandleUpdate_UnknownCommand(t *testing.T) {
	f := newFixture(t)
	f.expectReply("Unknown command. Type /help to see the list of available commands.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/stories"))
}

func TestHandleUpdate_RateLimited(t *testing.T) {
	f := newFixture(t)
	f.cmd.Limiter = fixedLimiter(false)
	f.expectReply(rateLimitedMessage)

	f.cmd.handleUpdate(context.Background(), commandUpdate("/feed"))

	assert.Empty(t, f.sessions.opens)
}

func TestHandleUpdate_IgnoresPlainText(t *testing.T) {
	f := newFixture(t)

	f.cmd.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: "hello there",
	}})
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.accounts.EXPECT().Login(gomock.Any(), "ana@example.com", "secret1").
		Return(&domain.Profile{ID: "u1", Username: "ana"}, nil)
	f.tg.EXPECT().DeleteMessage(chatID, 42).Return(nil)
	f.expectReply("✅ Welcome back, @ana!")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/login ana@example.com secret1"))

	actor, ok := f.ident.CurrentActor()
	require.True(t, ok)
	assert.Equal(t, ana, actor)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.accounts.EXPECT().Login(gomock.Any(), "ana@example.com", "nope").
		Return(nil, apperrors.Unauthorized("invalid email or password"))
	f.tg.EXPECT().DeleteMessage(chatID, 42).Return(nil)
	f.expectReply("🔒 Invalid email or password. Use /login or /signup first.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/login ana@example.com nope"))

	_, ok := f.ident.CurrentActor()
	assert.False(t, ok)
}

func TestLogin_Usage(t *testing.T) {
	f := newFixture(t)
	f.tg.EXPECT().DeleteMessage(chatID, 42).Return(nil)
	f.expectReply("Usage: /login <email> <password>")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/login ana@example.com"))
}

func TestSignup(t *testing.T) {
	f := newFixture(t)
	f.accounts.EXPECT().Signup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in identity.SignupInput) (*domain.Profile, error) {
			assert.Equal(t, identity.SignupInput{
				Email:    "ana@example.com",
				Password: "secret1",
				Username: "ana",
				FullName: "Ana Lima",
			}, in)
			return &domain.Profile{ID: "u1", Username: "ana"}, nil
		})
	f.tg.EXPECT().DeleteMessage(chatID, 42).Return(nil)
	f.expectReply("✅ Welcome to ArtFeed, @ana! Send a photo to share your first post.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/signup ana@example.com secret1 ana Ana Lima"))

	_, ok := f.ident.CurrentActor()
	assert.True(t, ok)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.expectReply("👋 Signed out.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/logout"))

	_, ok := f.ident.CurrentActor()
	assert.False(t, ok)

	f.expectReply("You are not signed in.")
	f.cmd.handleUpdate(context.Background(), commandUpdate("/logout"))
}

func TestBio(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.accounts.EXPECT().UpdateProfile(gomock.Any(), "u1", gomock.Any()).Return(&domain.Profile{ID: "u1"}, nil)
	f.expectReply("✅ Bio updated.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/bio I paint skies"))
}

func TestProfile_SignedOut(t *testing.T) {
	f := newFixture(t)
	f.expectReply("🔒 Use /login or /signup first.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/profile"))
}

func TestFeed_Paginates(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Refresh(gomock.Any()).Return(nil).Times(1)
	f.store.EXPECT().List(gomock.Any()).Return(makePosts(7), nil).Times(2)
	f.tg.EXPECT().SendPhotoByURL(chatID, gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil).Times(5)
	f.expectReply("Showing 1-5 of 7. /feed 2 for more.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/feed"))

	f.tg.EXPECT().SendPhotoByURL(chatID, "https://cdn.test/p6.png", gomock.Any(), gomock.Any()).Return(1, nil)
	f.tg.EXPECT().SendPhotoByURL(chatID, "https://cdn.test/p7.png", gomock.Any(), gomock.Any()).Return(1, nil)

	f.cmd.handleUpdate(context.Background(), commandUpdate("/feed 2"))
}

func TestFeed_Empty(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Refresh(gomock.Any()).Return(nil)
	f.store.EXPECT().List(gomock.Any()).Return(nil, nil)
	f.expectReply("The feed is empty. Send a photo to share the first post!")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/feed"))
}

func TestFeed_DependencyFailure(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Refresh(gomock.Any()).Return(nil)
	f.store.EXPECT().List(gomock.Any()).Return(nil, apperrors.Dependency(assert.AnError, "failed to load feed"))
	f.expectReply(genericFailureMessage)

	f.cmd.handleUpdate(context.Background(), commandUpdate("/feed"))
}

func TestFeed_RefreshFailure(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Refresh(gomock.Any()).Return(apperrors.Dependency(assert.AnError, "failed to load posts"))
	f.expectReply(genericFailureMessage)

	f.cmd.handleUpdate(context.Background(), commandUpdate("/feed"))
}

func TestExplore(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().Refresh(gomock.Any()).Return(nil)
	f.store.EXPECT().Explore(gomock.Any(), feed.ExploreFilter{
		Transformation: domain.TransformationGhibli,
		Search:         "forest spirit",
	}).Return(makePosts(1), nil)
	f.tg.EXPECT().SendPhotoByURL(chatID, "https://cdn.test/p1.png", gomock.Any(), gomock.Any()).Return(1, nil)

	f.cmd.handleUpdate(context.Background(), commandUpdate("/explore ghibli forest spirit"))
}

func TestParseExploreArgs(t *testing.T) {
	assert.Equal(t, feed.ExploreFilter{}, parseExploreArgs(""))
	assert.Equal(t, feed.ExploreFilter{Transformation: domain.TransformationCartoon}, parseExploreArgs("#cartoon"))
	assert.Equal(t, feed.ExploreFilter{Search: "ana beach"}, parseExploreArgs("ana beach"))
	assert.Equal(t, feed.ExploreFilter{Transformation: domain.TransformationLowLight, Search: "city"}, parseExploreArgs("low-light city"))
}

func TestMine(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().ByAuthor(gomock.Any(), "u1").Return(nil, nil)
	f.expectReply("You have not shared anything yet. Send a photo to start!")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/mine"))
}

func TestLike(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().ToggleLike(gomock.Any(), "p1", "u1").Return(domain.Post{ID: "p1", LikedByMe: true, LikeCount: 3}, nil)
	f.expectReply("❤️ Liked. 3 likes")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/like p1"))

	f.store.EXPECT().ToggleLike(gomock.Any(), "p1", "u1").Return(domain.Post{ID: "p1", LikeCount: 2}, nil)
	f.expectReply("💔 Like removed. 2 likes")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/like p1"))
}

func TestLike_SignedOut(t *testing.T) {
	f := newFixture(t)
	f.store.EXPECT().ToggleLike(gomock.Any(), "p1", "").Return(domain.Post{}, apperrors.Unauthorized("sign in to like posts"))
	f.expectReply("🔒 Sign in to like posts. Use /login or /signup first.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/like p1"))
}

func TestComment(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().AddComment(gomock.Any(), "p1", "lovely colors").Return(domain.Comment{ID: "c1"}, nil)
	f.expectReply("💬 Comment added.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/comment p1 lovely colors"))
}

func TestComment_Usage(t *testing.T) {
	f := newFixture(t)
	f.expectReply("Usage: /comment <post_id> <text>")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/comment"))
}

func TestDelete_NotOwner(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().DeletePost(gomock.Any(), "p1", "u1").Return(apperrors.Forbidden("only the author can delete this post"))
	f.expectReply("⛔ Only the author can delete this post.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/delete p1"))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().DeletePost(gomock.Any(), "p1", "u1").Return(nil)
	f.expectReply("🗑 Post deleted.")

	f.cmd.handleUpdate(context.Background(), commandUpdate("/delete p1"))
}

func photoUpdate(caption string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 43,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Caption:   caption,
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", FileSize: 1000},
			{FileID: "large", FileSize: 40000},
		},
	}}
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	image := []byte("image-bytes")
	created := makePosts(1)[0]
	created.AuthorID = "u1"

	f.tg.EXPECT().DownloadFile(gomock.Any(), "large", int64(1<<20)).Return(image, nil)
	f.store.EXPECT().CreatePost(gomock.Any(), feed.CreatePostInput{
		Image:          image,
		Caption:        "my cat",
		Transformation: domain.TransformationGhibli,
		Prompt:         "soft light",
	}).Return(created, nil)
	f.expectReply("✅ Shared!")
	f.tg.EXPECT().SendPhotoByURL(chatID, created.ImageURL, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ int64, _, _ string, keyboard *tgbotapi.InlineKeyboardMarkup) (int, error) {
			require.Len(t, keyboard.InlineKeyboard, 1)
			assert.Len(t, keyboard.InlineKeyboard[0], 2, "own posts get a delete button")
			return 1, nil
		})

	f.cmd.handleUpdate(context.Background(), photoUpdate("my cat #ghibli\nprompt: soft light"))
}

func TestUpload_SignedOut(t *testing.T) {
	f := newFixture(t)
	f.expectReply("🔒 Use /login or /signup before sharing photos.")

	f.cmd.handleUpdate(context.Background(), photoUpdate("hi"))
}

func TestUpload_TooLarge(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.cmd.maxUploadBytes = 2 << 20
	f.expectReply("⚠️ The image is too large. The limit is 2 MB.")

	u := photoUpdate("")
	u.Message.Photo[1].FileSize = 3 << 20
	f.cmd.handleUpdate(context.Background(), u)
}

func TestUpload_InvalidImage(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.tg.EXPECT().DownloadFile(gomock.Any(), "large", int64(1<<20)).Return([]byte("plain text"), nil)
	f.store.EXPECT().CreatePost(gomock.Any(), gomock.Any()).
		Return(domain.Post{}, apperrors.InvalidInput("unsupported file type text/plain"))
	f.expectReply("⚠️ Unsupported file type text/plain.")

	f.cmd.handleUpdate(context.Background(), photoUpdate(""))
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestCallback_Like(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().ToggleLike(gomock.Any(), "p1", "u1").Return(domain.Post{ID: "p1", LikedByMe: true, LikeCount: 1}, nil)
	f.tg.EXPECT().AnswerCallback("cb1", "❤️ Liked. 1 like").Return(nil)

	f.cmd.handleUpdate(context.Background(), callbackUpdate(encodeCallback(actionToggleLike, "p1")))
}

func TestCallback_Delete(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().DeletePost(gomock.Any(), "p1", "u1").Return(nil)
	f.tg.EXPECT().AnswerCallback("cb1", "🗑 Post deleted.").Return(nil)
	f.tg.EXPECT().DeleteMessage(chatID, 7).Return(nil)

	f.cmd.handleUpdate(context.Background(), callbackUpdate(encodeCallback(actionDeletePost, "p1")))
}

func TestCallback_NotFound(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.store.EXPECT().ToggleLike(gomock.Any(), "gone", "u1").Return(domain.Post{}, apperrors.NotFound("post not found"))
	f.tg.EXPECT().AnswerCallback("cb1", "🔍 Post not found.").Return(nil)

	f.cmd.handleUpdate(context.Background(), callbackUpdate(encodeCallback(actionToggleLike, "gone")))
}

func TestCallback_Garbage(t *testing.T) {
	f := newFixture(t)
	f.tg.EXPECT().AnswerCallback("cb1", "Unknown action").Return(nil)

	f.cmd.handleUpdate(context.Background(), callbackUpdate("not json"))
}

func TestPostCard(t *testing.T) {
	f := newFixture(t)

	card := f.cmd.postCard(domain.Post{
		ID:                "p1",
		AuthorDisplayName: "ana_b",
		Caption:           "Sunset. Wow!",
		Transformation:    domain.TransformationGhibli,
		Prompt:            "soft",
		LikeCount:         1,
		Comments: []domain.Comment{
			{AuthorDisplayName: "cy", Content: "first"},
			{AuthorDisplayName: "di", Content: "second"},
			{AuthorDisplayName: "bo", Content: "nice"},
		},
		CreatedAt: testNow.Add(-3 * time.Hour),
	})

	want := "*@ana\\_b* · 3h ago\n" +
		"Sunset\\. Wow\\!\n" +
		"_\\#ghibli_ · prompt: soft\n" +
		"❤️ 1 like · 💬 3 comments\n" +
		"*di*: second\n" +
		"*bo*: nice\n" +
		"`p1`"
	assert.Equal(t, want, card)
}

func TestPostKeyboard(t *testing.T) {
	p := domain.Post{ID: "p1", AuthorID: "u2", LikedByMe: true}

	kb := postKeyboard(p, "u1")
	require.Len(t, kb.InlineKeyboard[0], 1)
	assert.Equal(t, "💔 Unlike", kb.InlineKeyboard[0][0].Text)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, `{"a":"like","p":"p1"}`, *kb.InlineKeyboard[0][0].CallbackData)

	assert.Len(t, postKeyboard(p, "u2").InlineKeyboard[0], 2)
	assert.Len(t, postKeyboard(p, "").InlineKeyboard[0], 1)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "⚠️ Comment cannot be empty.", userMessage(apperrors.InvalidInput("comment cannot be empty")))
	assert.Equal(t, genericFailureMessage, userMessage(assert.AnError))
	assert.Equal(t, genericFailureMessage, userMessage(apperrors.Dependency(assert.AnError, "failed to add like")))
}

func TestHandleCommand_StopsOnCancel(t *testing.T) {
	f := newFixture(t)
	updates := make(chan tgbotapi.Update)
	f.tg.EXPECT().GetUpdatesChan(gomock.Any()).Return(tgbotapi.UpdatesChannel(updates))
	f.tg.EXPECT().StopReceivingUpdates()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.cmd.HandleCommand(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleCommand_ChannelClosed(t *testing.T) {
	f := newFixture(t)
	updates := make(chan tgbotapi.Update)
	close(updates)
	f.tg.EXPECT().GetUpdatesChan(gomock.Any()).Return(tgbotapi.UpdatesChannel(updates))

	err := f.cmd.HandleCommand(context.Background())
	assert.EqualError(t, err, "telegram updates channel closed")
}
