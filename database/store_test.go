package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"minigram/types"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormTestStore(t *testing.T) Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store := NewGormStore(db)
	require.NoError(t, store.Migrate())
	return store
}

func newMemoryTestStore(t *testing.T) Store {
	store := NewMemoryStore()
	clock := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	store.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

var backends = map[string]func(t *testing.T) Store{
	"memory": newMemoryTestStore,
	"gorm":   newGormTestStore,
}

func forEachBackend(t *testing.T, fn func(t *testing.T, store Store)) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

func createProfile(t *testing.T, store Store, username string) types.Profile {
	t.Helper()

	p := types.Profile{Username: username}
	require.NoError(t, store.Profiles().Create(context.Background(), &p))
	require.NotZero(t, p.ID)
	require.False(t, p.JoinDate.IsZero())
	return p
}

func createPost(t *testing.T, store Store, profileID uint, caption string, at time.Time) types.Post {
	t.Helper()

	p := types.Post{ProfileID: profileID, Caption: caption, Timestamp: at}
	require.NoError(t, store.Posts().Create(context.Background(), &p))
	return p
}

func TestProfileCRUD(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		p := createProfile(t, store, "alice")

		got, err := store.Profiles().Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)

		got.DisplayName = "Alice"
		got.BioText = "hi"
		got.Username = "ignored"
		require.NoError(t, store.Profiles().Update(ctx, got))

		got, err = store.Profiles().Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.DisplayName)
		assert.Equal(t, "hi", got.BioText)
		assert.Equal(t, "alice", got.Username)

		_, err = store.Profiles().Get(ctx, p.ID+100)
		require.ErrorIs(t, err, types.ErrNotFound)

		require.ErrorIs(t, store.Profiles().Update(ctx, &types.Profile{ID: p.ID + 100}), types.ErrNotFound)

		q := createProfile(t, store, "bob")
		listed, err := store.Profiles().ListByIDs(ctx, []uint{q.ID, p.ID, 999})
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, p.ID, listed[0].ID)

		none, err := store.Profiles().ListByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)

		require.NoError(t, store.Profiles().Delete(ctx, p.ID))
		require.ErrorIs(t, store.Profiles().Delete(ctx, p.ID), types.ErrNotFound)

		ok, err := store.Profiles().Exists(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		all, err := store.Profiles().List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "bob", all[0].Username)
	})
}

func TestForeignKeysChecked(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		err := store.Posts().Create(ctx, &types.Post{ProfileID: 42, Caption: "orphan"})
		require.ErrorIs(t, err, types.ErrConstraintViolation)

		err = store.Photos().Create(ctx, &types.Photo{PostID: 42, ImageURL: "https://example.com/a.jpg"})
		require.ErrorIs(t, err, types.ErrConstraintViolation)

		p := createProfile(t, store, "real")

		err = store.Follows().Create(ctx, &types.Follow{ProfileID: p.ID, FollowerProfileID: 42})
		require.ErrorIs(t, err, types.ErrConstraintViolation)

		err = store.Comments().Create(ctx, &types.Comment{PostID: 42, ProfileID: p.ID, Text: "x"})
		require.ErrorIs(t, err, types.ErrConstraintViolation)

		post := createPost(t, store, p.ID, "real post", time.Time{})

		err = store.Likes().Create(ctx, &types.Like{PostID: post.ID, ProfileID: 42})
		require.ErrorIs(t, err, types.ErrConstraintViolation)
	})
}

func TestPostOrderingAndSearch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		a := createProfile(t, store, "a")
		b := createProfile(t, store, "b")

		p1 := createPost(t, store, a.ID, "Sunset at the BEACH", base.Add(1*time.Hour))
		p2 := createPost(t, store, b.ID, "beach day", base.Add(3*time.Hour))
		p3 := createPost(t, store, a.ID, "mountains", base.Add(2*time.Hour))
		p4 := createPost(t, store, b.ID, "100% beach_vibes", base.Add(3*time.Hour))

		feed, err := store.Posts().FindByProfileIDs(ctx, []uint{a.ID, b.ID})
		require.NoError(t, err)
		ids := []uint{}
		for _, p := range feed {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []uint{p4.ID, p2.ID, p3.ID, p1.ID}, ids)

		empty, err := store.Posts().FindByProfileIDs(ctx, []uint{})
		require.NoError(t, err)
		assert.Empty(t, empty)

		found, err := store.Posts().Search(ctx, "Beach")
		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, p4.ID, found[0].ID)

		literal, err := store.Posts().Search(ctx, "0% b")
		require.NoError(t, err)
		require.Len(t, literal, 1)
		assert.Equal(t, p4.ID, literal[0].ID)

		underscore, err := store.Posts().Search(ctx, "h_v")
		require.NoError(t, err)
		require.Len(t, underscore, 1)

		none, err := store.Posts().Search(ctx, "h%v")
		require.NoError(t, err)
		assert.Empty(t, none)

		// Only A-Z fold, so accented capitals must match exactly
		p5 := createPost(t, store, a.ID, "Éclair day", base.Add(4*time.Hour))

		accented, err := store.Posts().Search(ctx, "ÉCLAIR")
		require.NoError(t, err)
		require.Len(t, accented, 1)
		assert.Equal(t, p5.ID, accented[0].ID)

		lowered, err := store.Posts().Search(ctx, "éclair")
		require.NoError(t, err)
		assert.Empty(t, lowered)

		post := p3
		post.Caption = "alps"
		require.NoError(t, store.Posts().Update(ctx, &post))
		got, err := store.Posts().Get(ctx, p3.ID)
		require.NoError(t, err)
		assert.Equal(t, "alps", got.Caption)
	})
}

func TestProfileSearchDeduplicates(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		p := types.Profile{Username: "photoguy", DisplayName: "Photo Guy", BioText: "I take photos"}
		require.NoError(t, store.Profiles().Create(ctx, &p))
		q := types.Profile{Username: "other", BioText: "no match"}
		require.NoError(t, store.Profiles().Create(ctx, &q))

		found, err := store.Profiles().Search(ctx, "PHOTO")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, p.ID, found[0].ID)
	})
}

func TestPhotosOrderedByID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		p := createProfile(t, store, "owner")
		post := createPost(t, store, p.ID, "pics", time.Time{})

		_, err := store.Photos().FirstByPostID(ctx, post.ID)
		require.ErrorIs(t, err, types.ErrNotFound)

		first := types.Photo{PostID: post.ID, ImageURL: "https://example.com/1.jpg"}
		require.NoError(t, store.Photos().Create(ctx, &first))
		second := types.Photo{PostID: post.ID, ImageFile: "photos/2.jpg"}
		require.NoError(t, store.Photos().Create(ctx, &second))

		got, err := store.Photos().FirstByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		all, err := store.Photos().FindByPostID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[1].ID)

		n, err := store.Photos().DeleteByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})
}

func TestEdgesAreUnique(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		a := createProfile(t, store, "a")
		b := createProfile(t, store, "b")
		c := createProfile(t, store, "c")

		f1 := types.Follow{ProfileID: a.ID, FollowerProfileID: b.ID}
		require.NoError(t, store.Follows().Create(ctx, &f1))
		f2 := types.Follow{ProfileID: a.ID, FollowerProfileID: b.ID}
		require.NoError(t, store.Follows().Create(ctx, &f2))
		assert.Equal(t, f1.ID, f2.ID)

		require.NoError(t, store.Follows().Create(ctx, &types.Follow{ProfileID: b.ID, FollowerProfileID: c.ID}))
		require.NoError(t, store.Follows().Create(ctx, &types.Follow{ProfileID: a.ID, FollowerProfileID: c.ID}))

		n, err := store.Follows().CountByProfileID(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = store.Follows().CountByFollowerID(ctx, c.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		removed, err := store.Follows().DeleteByProfileID(ctx, b.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, removed)

		left, err := store.Follows().FindByProfileID(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, c.ID, left[0].FollowerProfileID)

		post := createPost(t, store, a.ID, "p", time.Time{})
		l1 := types.Like{PostID: post.ID, ProfileID: b.ID}
		require.NoError(t, store.Likes().Create(ctx, &l1))
		l2 := types.Like{PostID: post.ID, ProfileID: b.ID}
		require.NoError(t, store.Likes().Create(ctx, &l2))
		assert.Equal(t, l1.ID, l2.ID)

		likes, err := store.Likes().CountByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, likes)

		gone, err := store.Likes().Delete(ctx, post.ID, b.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, gone)

		gone, err = store.Likes().Delete(ctx, post.ID, b.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, gone)
	})
}

func TestTransactionRollsBack(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		p := createProfile(t, store, "owner")

		err := store.Transaction(ctx, func(tx Store) error {
			post := types.Post{ProfileID: p.ID, Caption: "half written"}
			if err := tx.Posts().Create(ctx, &post); err != nil {
				return err
			}
			return tx.Photos().Create(ctx, &types.Photo{PostID: post.ID + 50, ImageURL: "https://example.com/x.jpg"})
		})
		require.ErrorIs(t, err, types.ErrConstraintViolation)

		posts, err := store.Posts().FindByProfileIDs(ctx, []uint{p.ID})
		require.NoError(t, err)
		assert.Empty(t, posts)

		err = store.Transaction(ctx, func(tx Store) error {
			post := types.Post{ProfileID: p.ID, Caption: "kept"}
			return tx.Posts().Create(ctx, &post)
		})
		require.NoError(t, err)

		posts, err = store.Posts().FindByProfileIDs(ctx, []uint{p.ID})
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "kept", posts[0].Caption)
	})
}

func TestCommentsByProfile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		a := createProfile(t, store, "a")
		b := createProfile(t, store, "b")
		post := createPost(t, store, a.ID, "p", time.Time{})

		c1 := types.Comment{PostID: post.ID, ProfileID: a.ID, Text: "mine"}
		require.NoError(t, store.Comments().Create(ctx, &c1))
		c2 := types.Comment{PostID: post.ID, ProfileID: b.ID, Text: "theirs"}
		require.NoError(t, store.Comments().Create(ctx, &c2))

		got, err := store.Comments().Get(ctx, c2.ID)
		require.NoError(t, err)
		assert.Equal(t, "theirs", got.Text)

		n, err := store.Comments().DeleteByProfileID(ctx, b.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		left, err := store.Comments().FindByPostID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, c1.ID, left[0].ID)

		_, err = store.Comments().Get(ctx, c2.ID)
		require.ErrorIs(t, err, types.ErrNotFound)
	})
}
