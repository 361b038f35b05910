package feedimpl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/orgball2608/artfeed-bot/internal/domain"
	"github.com/orgball2608/artfeed-bot/internal/identity/identityimpl"
	"github.com/orgball2608/artfeed-bot/internal/repositories/comment"
	"github.com/orgball2608/artfeed-bot/internal/repositories/like"
	"github.com/orgball2608/artfeed-bot/internal/repositories/post"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
)

var (
	pngImage  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegImage = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

// memDB is a shared in-memory backend standing in for postgres in tests.
type memDB struct {
	mu         sync.Mutex
	seq        int
	clock      time.Time
	posts      []*domain.Post
	likeCounts map[string]int
	comments   []domain.Comment
	likes      map[[2]string]struct{}
}

func newMemDB() *memDB {
	return &memDB{
		clock:      time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		likeCounts: make(map[string]int),
		likes:      make(map[[2]string]struct{}),
	}
}

// tick must be called with mu held.
func (db *memDB) tick() (string, time.Time) {
	db.seq++
	db.clock = db.clock.Add(time.Second)
	return fmt.Sprintf("id-%d", db.seq), db.clock
}

func (db *memDB) relationCount(postID string) int {
	n := 0
	for k := range db.likes {
		if k[0] == postID {
			n++
		}
	}
	return n
}

func (db *memDB) hasPost(id string) bool {
	for _, p := range db.posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

type memPosts struct{ db *memDB }

func (r memPosts) Create(_ context.Context, p *domain.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p.ID, p.CreatedAt = r.db.tick()
	stored := p.Clone()
	r.db.posts = append(r.db.posts, &stored)
	return nil
}

func (r memPosts) List(_ context.Context) ([]*domain.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*domain.Post, 0, len(r.db.posts))
	for _, p := range r.db.posts {
		c := p.Clone()
		c.Comments = nil
		c.LikeCount = r.db.relationCount(p.ID)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memPosts) GetByID(_ context.Context, id string) (*domain.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.posts {
		if p.ID == id {
			c := p.Clone()
			return &c, nil
		}
	}
	return nil, post.ErrNotFound
}

func (r memPosts) Delete(_ context.Context, id, authorID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, p := range r.db.posts {
		if p.ID == id && p.AuthorID == authorID {
			r.db.posts = append(r.db.posts[:i], r.db.posts[i+1:]...)
			for k := range r.db.likes {
				if k[0] == id {
					delete(r.db.likes, k)
				}
			}
			kept := r.db.comments[:0]
			for _, c := range r.db.comments {
				if c.PostID != id {
					kept = append(kept, c)
				}
			}
			r.db.comments = kept
			return nil
		}
	}
	return post.ErrNotFound
}

func (r memPosts) AdjustLikeCount(_ context.Context, id string, delta int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.likeCounts[id] = max(r.db.likeCounts[id]+delta, 0)
	return r.db.likeCounts[id], nil
}

func (r memPosts) ReconcileLikeCounts(_ context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var fixed int64
	for _, p := range r.db.posts {
		if n := r.db.relationCount(p.ID); r.db.likeCounts[p.ID] != n {
			r.db.likeCounts[p.ID] = n
			fixed++
		}
	}
	return fixed, nil
}

// reloadingPosts refreshes store right after each insert lands.
type reloadingPosts struct {
	memPosts
	store *Store
}

func (r *reloadingPosts) Create(ctx context.Context, p *domain.Post) error {
	if err := r.memPosts.Create(ctx, p); err != nil {
		return err
	}
	return r.store.Refresh(ctx)
}

type memComments struct{ db *memDB }

func (r memComments) Create(_ context.Context, c *domain.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.hasPost(c.PostID) {
		return comment.ErrPostNotFound
	}
	c.ID, c.CreatedAt = r.db.tick()
	r.db.comments = append(r.db.comments, *c)
	return nil
}

func (r memComments) ListByPostIDs(_ context.Context, ids []string) (map[string][]domain.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[string][]domain.Comment)
	for _, c := range r.db.comments {
		if want[c.PostID] {
			out[c.PostID] = append(out[c.PostID], c)
		}
	}
	return out, nil
}

type memLikes struct{ db *memDB }

func (r memLikes) Exists(_ context.Context, postID, actorID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	_, ok := r.db.likes[[2]string{postID, actorID}]
	return ok, nil
}

func (r memLikes) Create(_ context.Context, postID, actorID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if !r.db.hasPost(postID) {
		return like.ErrPostNotFound
	}
	key := [2]string{postID, actorID}
	if _, ok := r.db.likes[key]; ok {
		return like.ErrAlreadyExists
	}
	r.db.likes[key] = struct{}{}
	return nil
}

func (r memLikes) Delete(_ context.Context, postID, actorID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := [2]string{postID, actorID}
	if _, ok := r.db.likes[key]; !ok {
		return like.ErrNotFound
	}
	delete(r.db.likes, key)
	return nil
}

func (r memLikes) LikedPostIDs(_ context.Context, actorID string) (map[string]struct{}, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[string]struct{})
	for k := range r.db.likes {
		if k[1] == actorID {
			out[k[0]] = struct{}{}
		}
	}
	return out, nil
}

// recordingBlob is an in-memory blob store that records every call.
type recordingBlob struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   []string
	removed   []string
	failOn    int // fail the n-th upload (1-based); 0 never fails
	removeErr error
}

var errBlobDown = errors.New("blob service unavailable")

func newRecordingBlob() *recordingBlob {
	return &recordingBlob{objects: make(map[string][]byte)}
}

func (b *recordingBlob) Upload(_ context.Context, path string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, path)
	if b.failOn == len(b.uploads) {
		return errBlobDown
	}
	b.objects[path] = data
	return nil
}

func (b *recordingBlob) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (b *recordingBlob) Remove(_ context.Context, paths []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed = append(b.removed, paths...)
	if b.removeErr != nil {
		return b.removeErr
	}
	for _, p := range paths {
		delete(b.objects, p)
	}
	return nil
}

func (b *recordingBlob) has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[path]
	return ok
}

type harness struct {
	db   *memDB
	blob *recordingBlob
}

func newHarness() *harness {
	return &harness{db: newMemDB(), blob: newRecordingBlob()}
}

// session returns a store signed in as actor, or signed out when actor is nil.
func (h *harness) session(actor *domain.Actor) (*Store, *identityimpl.Session) {
	sess := identityimpl.NewSession(nil)
	if actor != nil {
		sess.Restore(*actor)
	}
	s := New(Opts{
		Identity: sess,
		Posts:    memPosts{h.db},
		Comments: memComments{h.db},
		Likes:    memLikes{h.db},
		Blob:     h.blob,
		Logger:   logger.NewNop(),
	})
	return s, sess
}
