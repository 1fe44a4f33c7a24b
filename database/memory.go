package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"minigram/types"

	"golang.org/x/exp/slices"
)

type memData struct {
	lastID   map[string]uint
	profiles map[uint]types.Profile
	posts    map[uint]types.Post
	photos   map[uint]types.Photo
	follows  map[uint]types.Follow
	comments map[uint]types.Comment
	likes    map[uint]types.Like
}

func newMemData() *memData {
	return &memData{
		lastID:   map[string]uint{},
		profiles: map[uint]types.Profile{},
		posts:    map[uint]types.Post{},
		photos:   map[uint]types.Photo{},
		follows:  map[uint]types.Follow{},
		comments: map[uint]types.Comment{},
		likes:    map[uint]types.Like{},
	}
}

func cloneMap[V any](m map[uint]V) map[uint]V {
	out := make(map[uint]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	lastID := make(map[string]uint, len(d.lastID))
	for k, v := range d.lastID {
		lastID[k] = v
	}

	return &memData{
		lastID:   lastID,
		profiles: cloneMap(d.profiles),
		posts:    cloneMap(d.posts),
		photos:   cloneMap(d.photos),
		follows:  cloneMap(d.follows),
		comments: cloneMap(d.comments),
		likes:    cloneMap(d.likes),
	}
}

func (d *memData) nextID(table string) uint {
	d.lastID[table]++
	return d.lastID[table]
}

// MemoryStore keeps everything in process memory. A transaction works on a
// copy of the data and swaps it in on success, so callers see all of it or
// none of it.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool

	// Now stamps new rows. Defaults to time.Now.
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:   &sync.Mutex{},
		data: newMemData(),
		Now:  time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemoryStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemoryStore) stamp(t *time.Time) {
	if t.IsZero() {
		*t = s.Now()
	}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{
		mu:   s.mu,
		data: s.data.clone(),
		inTx: true,
		Now:  s.Now,
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.data = tx.data
	return nil
}

func (s *MemoryStore) Profiles() ProfileRepository { return memProfiles{s} }
func (s *MemoryStore) Posts() PostRepository       { return memPosts{s} }
func (s *MemoryStore) Photos() PhotoRepository     { return memPhotos{s} }
func (s *MemoryStore) Follows() FollowRepository   { return memFollows{s} }
func (s *MemoryStore) Comments() CommentRepository { return memComments{s} }
func (s *MemoryStore) Likes() LikeRepository       { return memLikes{s} }

// foldASCII lowers A-Z only. Search folds this way on every backend so
// results do not depend on the database's locale.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(foldASCII(s), foldASCII(substr))
}

func sortedValues[V any](m map[uint]V, keep func(V) bool) []V {
	ids := make([]uint, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func deleteWhere[V any](m map[uint]V, match func(V) bool) int64 {
	var n int64
	for id, v := range m {
		if match(v) {
			delete(m, id)
			n++
		}
	}
	return n
}

func newestFirst(posts []types.Post) {
	slices.SortStableFunc(posts, func(a, b types.Post) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})
}

// Profiles

type memProfiles struct{ s *MemoryStore }

func (r memProfiles) Create(ctx context.Context, p *types.Profile) error {
	r.s.lock()
	defer r.s.unlock()

	p.ID = r.s.data.nextID("profiles")
	r.s.stamp(&p.JoinDate)
	r.s.data.profiles[p.ID] = *p
	return nil
}

func (r memProfiles) Get(ctx context.Context, id uint) (*types.Profile, error) {
	r.s.lock()
	defer r.s.unlock()

	p, ok := r.s.data.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: profile %d", types.ErrNotFound, id)
	}
	return &p, nil
}

func (r memProfiles) List(ctx context.Context) ([]types.Profile, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.profiles, nil), nil
}

func (r memProfiles) ListByIDs(ctx context.Context, ids []uint) ([]types.Profile, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.profiles, func(p types.Profile) bool {
		return slices.Contains(ids, p.ID)
	}), nil
}

func (r memProfiles) Update(ctx context.Context, p *types.Profile) error {
	r.s.lock()
	defer r.s.unlock()

	cur, ok := r.s.data.profiles[p.ID]
	if !ok {
		return fmt.Errorf("%w: profile %d", types.ErrNotFound, p.ID)
	}

	cur.DisplayName = p.DisplayName
	cur.ProfileImageURL = p.ProfileImageURL
	cur.BioText = p.BioText
	r.s.data.profiles[p.ID] = cur
	return nil
}

func (r memProfiles) Delete(ctx context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.profiles[id]; !ok {
		return fmt.Errorf("%w: profile %d", types.ErrNotFound, id)
	}
	delete(r.s.data.profiles, id)
	return nil
}

func (r memProfiles) Search(ctx context.Context, query string) ([]types.Profile, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.profiles, func(p types.Profile) bool {
		return containsFold(p.Username, query) || containsFold(p.DisplayName, query) || containsFold(p.BioText, query)
	}), nil
}

func (r memProfiles) Exists(ctx context.Context, id uint) (bool, error) {
	r.s.lock()
	defer r.s.unlock()

	_, ok := r.s.data.profiles[id]
	return ok, nil
}

// Posts

type memPosts struct{ s *MemoryStore }

func (r memPosts) Create(ctx context.Context, p *types.Post) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.profiles[p.ProfileID]; !ok {
		return fmt.Errorf("%w: post references missing profile %d", types.ErrConstraintViolation, p.ProfileID)
	}

	p.ID = r.s.data.nextID("posts")
	r.s.stamp(&p.Timestamp)
	r.s.data.posts[p.ID] = *p
	return nil
}

func (r memPosts) Get(ctx context.Context, id uint) (*types.Post, error) {
	r.s.lock()
	defer r.s.unlock()

	p, ok := r.s.data.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post %d", types.ErrNotFound, id)
	}
	return &p, nil
}

func (r memPosts) Update(ctx context.Context, p *types.Post) error {
	r.s.lock()
	defer r.s.unlock()

	cur, ok := r.s.data.posts[p.ID]
	if !ok {
		return fmt.Errorf("%w: post %d", types.ErrNotFound, p.ID)
	}

	cur.Caption = p.Caption
	r.s.data.posts[p.ID] = cur
	return nil
}

func (r memPosts) Delete(ctx context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.posts[id]; !ok {
		return fmt.Errorf("%w: post %d", types.ErrNotFound, id)
	}
	delete(r.s.data.posts, id)
	return nil
}

func (r memPosts) FindByProfileIDs(ctx context.Context, profileIDs []uint) ([]types.Post, error) {
	r.s.lock()
	defer r.s.unlock()

	owners := make(map[uint]struct{}, len(profileIDs))
	for _, id := range profileIDs {
		owners[id] = struct{}{}
	}

	posts := sortedValues(r.s.data.posts, func(p types.Post) bool {
		_, ok := owners[p.ProfileID]
		return ok
	})
	newestFirst(posts)
	return posts, nil
}

func (r memPosts) Search(ctx context.Context, query string) ([]types.Post, error) {
	r.s.lock()
	defer r.s.unlock()

	posts := sortedValues(r.s.data.posts, func(p types.Post) bool {
		return containsFold(p.Caption, query)
	})
	newestFirst(posts)
	return posts, nil
}

func (r memPosts) Exists(ctx context.Context, id uint) (bool, error) {
	r.s.lock()
	defer r.s.unlock()

	_, ok := r.s.data.posts[id]
	return ok, nil
}

// Photos

type memPhotos struct{ s *MemoryStore }

func (r memPhotos) Create(ctx context.Context, p *types.Photo) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.posts[p.PostID]; !ok {
		return fmt.Errorf("%w: photo references missing post %d", types.ErrConstraintViolation, p.PostID)
	}

	p.ID = r.s.data.nextID("photos")
	r.s.stamp(&p.Timestamp)
	r.s.data.photos[p.ID] = *p
	return nil
}

func (r memPhotos) FindByPostID(ctx context.Context, postID uint) ([]types.Photo, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.photos, func(p types.Photo) bool { return p.PostID == postID }), nil
}

func (r memPhotos) FirstByPostID(ctx context.Context, postID uint) (*types.Photo, error) {
	photos, err := r.FindByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: no photos on post %d", types.ErrNotFound, postID)
	}
	return &photos[0], nil
}

func (r memPhotos) DeleteByPostID(ctx context.Context, postID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.photos, func(p types.Photo) bool { return p.PostID == postID }), nil
}

// Follows

type memFollows struct{ s *MemoryStore }

func (r memFollows) Create(ctx context.Context, f *types.Follow) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.profiles[f.ProfileID]; !ok {
		return fmt.Errorf("%w: follow references missing profile %d", types.ErrConstraintViolation, f.ProfileID)
	}
	if _, ok := r.s.data.profiles[f.FollowerProfileID]; !ok {
		return fmt.Errorf("%w: follow references missing follower %d", types.ErrConstraintViolation, f.FollowerProfileID)
	}

	for _, existing := range r.s.data.follows {
		if existing.ProfileID == f.ProfileID && existing.FollowerProfileID == f.FollowerProfileID {
			*f = existing
			return nil
		}
	}

	f.ID = r.s.data.nextID("follows")
	r.s.stamp(&f.Timestamp)
	r.s.data.follows[f.ID] = *f
	return nil
}

func (r memFollows) Find(ctx context.Context, profileID, followerID uint) (*types.Follow, error) {
	r.s.lock()
	defer r.s.unlock()

	for _, f := range r.s.data.follows {
		if f.ProfileID == profileID && f.FollowerProfileID == followerID {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("%w: follow %d -> %d", types.ErrNotFound, followerID, profileID)
}

func (r memFollows) Delete(ctx context.Context, profileID, followerID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.follows, func(f types.Follow) bool {
		return f.ProfileID == profileID && f.FollowerProfileID == followerID
	}), nil
}

func (r memFollows) FindByProfileID(ctx context.Context, profileID uint) ([]types.Follow, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.follows, func(f types.Follow) bool { return f.ProfileID == profileID }), nil
}

func (r memFollows) FindByFollowerID(ctx context.Context, followerID uint) ([]types.Follow, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.follows, func(f types.Follow) bool { return f.FollowerProfileID == followerID }), nil
}

func (r memFollows) CountByProfileID(ctx context.Context, profileID uint) (int64, error) {
	edges, err := r.FindByProfileID(ctx, profileID)
	return int64(len(edges)), err
}

func (r memFollows) CountByFollowerID(ctx context.Context, followerID uint) (int64, error) {
	edges, err := r.FindByFollowerID(ctx, followerID)
	return int64(len(edges)), err
}

func (r memFollows) DeleteByProfileID(ctx context.Context, profileID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.follows, func(f types.Follow) bool {
		return f.ProfileID == profileID || f.FollowerProfileID == profileID
	}), nil
}

// Comments

type memComments struct{ s *MemoryStore }

func (r memComments) Create(ctx context.Context, c *types.Comment) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.posts[c.PostID]; !ok {
		return fmt.Errorf("%w: comment references missing post %d", types.ErrConstraintViolation, c.PostID)
	}
	if _, ok := r.s.data.profiles[c.ProfileID]; !ok {
		return fmt.Errorf("%w: comment references missing profile %d", types.ErrConstraintViolation, c.ProfileID)
	}

	c.ID = r.s.data.nextID("comments")
	r.s.stamp(&c.Timestamp)
	r.s.data.comments[c.ID] = *c
	return nil
}

func (r memComments) Get(ctx context.Context, id uint) (*types.Comment, error) {
	r.s.lock()
	defer r.s.unlock()

	c, ok := r.s.data.comments[id]
	if !ok {
		return nil, fmt.Errorf("%w: comment %d", types.ErrNotFound, id)
	}
	return &c, nil
}

func (r memComments) Delete(ctx context.Context, id uint) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.comments[id]; !ok {
		return fmt.Errorf("%w: comment %d", types.ErrNotFound, id)
	}
	delete(r.s.data.comments, id)
	return nil
}

func (r memComments) FindByPostID(ctx context.Context, postID uint) ([]types.Comment, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.comments, func(c types.Comment) bool { return c.PostID == postID }), nil
}

func (r memComments) DeleteByPostID(ctx context.Context, postID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.comments, func(c types.Comment) bool { return c.PostID == postID }), nil
}

func (r memComments) DeleteByProfileID(ctx context.Context, profileID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.comments, func(c types.Comment) bool { return c.ProfileID == profileID }), nil
}

// Likes

type memLikes struct{ s *MemoryStore }

func (r memLikes) Create(ctx context.Context, l *types.Like) error {
	r.s.lock()
	defer r.s.unlock()

	if _, ok := r.s.data.posts[l.PostID]; !ok {
		return fmt.Errorf("%w: like references missing post %d", types.ErrConstraintViolation, l.PostID)
	}
	if _, ok := r.s.data.profiles[l.ProfileID]; !ok {
		return fmt.Errorf("%w: like references missing profile %d", types.ErrConstraintViolation, l.ProfileID)
	}

	for _, existing := range r.s.data.likes {
		if existing.PostID == l.PostID && existing.ProfileID == l.ProfileID {
			*l = existing
			return nil
		}
	}

	l.ID = r.s.data.nextID("likes")
	r.s.stamp(&l.Timestamp)
	r.s.data.likes[l.ID] = *l
	return nil
}

func (r memLikes) Find(ctx context.Context, postID, profileID uint) (*types.Like, error) {
	r.s.lock()
	defer r.s.unlock()

	for _, l := range r.s.data.likes {
		if l.PostID == postID && l.ProfileID == profileID {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("%w: like of post %d by %d", types.ErrNotFound, postID, profileID)
}

func (r memLikes) Delete(ctx context.Context, postID, profileID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.likes, func(l types.Like) bool {
		return l.PostID == postID && l.ProfileID == profileID
	}), nil
}

func (r memLikes) FindByPostID(ctx context.Context, postID uint) ([]types.Like, error) {
	r.s.lock()
	defer r.s.unlock()

	return sortedValues(r.s.data.likes, func(l types.Like) bool { return l.PostID == postID }), nil
}

func (r memLikes) CountByPostID(ctx context.Context, postID uint) (int64, error) {
	likes, err := r.FindByPostID(ctx, postID)
	return int64(len(likes)), err
}

func (r memLikes) DeleteByPostID(ctx context.Context, postID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.likes, func(l types.Like) bool { return l.PostID == postID }), nil
}

func (r memLikes) DeleteByProfileID(ctx context.Context, profileID uint) (int64, error) {
	r.s.lock()
	defer r.s.unlock()

	return deleteWhere(r.s.data.likes, func(l types.Like) bool { return l.ProfileID == profileID }), nil
}
