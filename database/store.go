// Package database holds the entity store: one repository per table and a
// Store that groups them behind a transaction boundary.
package database

import (
	"context"

	"minigram/types"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *types.Profile) error
	Get(ctx context.Context, id uint) (*types.Profile, error)
	// List returns every profile in ascending id order.
	List(ctx context.Context) ([]types.Profile, error)
	// ListByIDs returns the profiles with the given ids in ascending id order.
	// Missing ids are skipped.
	ListByIDs(ctx context.Context, ids []uint) ([]types.Profile, error)
	// Update writes display_name, profile_image_url and bio_text only.
	Update(ctx context.Context, p *types.Profile) error
	Delete(ctx context.Context, id uint) error
	// Search matches username, display_name or bio_text, case-insensitively.
	Search(ctx context.Context, query string) ([]types.Profile, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, p *types.Post) error
	Get(ctx context.Context, id uint) (*types.Post, error)
	// Update writes caption only.
	Update(ctx context.Context, p *types.Post) error
	Delete(ctx context.Context, id uint) error
	// FindByProfileIDs returns posts owned by any of the profiles, newest first.
	FindByProfileIDs(ctx context.Context, profileIDs []uint) ([]types.Post, error)
	// Search matches caption case-insensitively, newest first.
	Search(ctx context.Context, query string) ([]types.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type PhotoRepository interface {
	Create(ctx context.Context, p *types.Photo) error
	// FindByPostID returns the post's photos in ascending id order.
	FindByPostID(ctx context.Context, postID uint) ([]types.Photo, error)
	// FirstByPostID returns the lowest-id photo, or ErrNotFound.
	FirstByPostID(ctx context.Context, postID uint) (*types.Photo, error)
	DeleteByPostID(ctx context.Context, postID uint) (int64, error)
}

type FollowRepository interface {
	// Create inserts the edge. When the pair already exists the stored
	// edge is loaded into f instead.
	Create(ctx context.Context, f *types.Follow) error
	Find(ctx context.Context, profileID, followerID uint) (*types.Follow, error)
	Delete(ctx context.Context, profileID, followerID uint) (int64, error)
	// FindByProfileID returns the edges pointing at the profile (its followers).
	FindByProfileID(ctx context.Context, profileID uint) ([]types.Follow, error)
	// FindByFollowerID returns the edges leaving the profile (who it follows).
	FindByFollowerID(ctx context.Context, followerID uint) ([]types.Follow, error)
	CountByProfileID(ctx context.Context, profileID uint) (int64, error)
	CountByFollowerID(ctx context.Context, followerID uint) (int64, error)
	// DeleteByProfileID removes every edge the profile is on, either side.
	DeleteByProfileID(ctx context.Context, profileID uint) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *types.Comment) error
	Get(ctx context.Context, id uint) (*types.Comment, error)
	Delete(ctx context.Context, id uint) error
	FindByPostID(ctx context.Context, postID uint) ([]types.Comment, error)
	DeleteByPostID(ctx context.Context, postID uint) (int64, error)
	DeleteByProfileID(ctx context.Context, profileID uint) (int64, error)
}

type LikeRepository interface {
	// Create inserts the like. When the pair already exists the stored
	// like is loaded into l instead.
	Create(ctx context.Context, l *types.Like) error
	Find(ctx context.Context, postID, profileID uint) (*types.Like, error)
	Delete(ctx context.Context, postID, profileID uint) (int64, error)
	FindByPostID(ctx context.Context, postID uint) ([]types.Like, error)
	CountByPostID(ctx context.Context, postID uint) (int64, error)
	DeleteByPostID(ctx context.Context, postID uint) (int64, error)
	DeleteByProfileID(ctx context.Context, profileID uint) (int64, error)
}

// Store groups the repositories. Repositories obtained from the Store passed
// to a Transaction callback share that transaction.
type Store interface {
	Profiles() ProfileRepository
	Posts() PostRepository
	Photos() PhotoRepository
	Follows() FollowRepository
	Comments() CommentRepository
	Likes() LikeRepository

	// Transaction runs fn atomically. If fn returns an error nothing it
	// wrote is kept.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
