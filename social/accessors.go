package social

import (
	"context"
	"errors"

	"minigram/types"
)

func (s *Service) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	return s.store.Profiles().List(ctx)
}

func (s *Service) GetProfile(ctx context.Context, id uint) (*types.Profile, error) {
	return s.store.Profiles().Get(ctx, id)
}

// GetProfileDetail bundles a profile with its posts and follow counts.
func (s *Service) GetProfileDetail(ctx context.Context, id uint) (*types.ProfileDetail, error) {
	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	posts, err := s.GetAllPosts(ctx, id)
	if err != nil {
		return nil, err
	}

	followers, err := s.GetNumFollowers(ctx, id)
	if err != nil {
		return nil, err
	}

	following, err := s.GetNumFollowing(ctx, id)
	if err != nil {
		return nil, err
	}

	return &types.ProfileDetail{
		Profile:      *profile,
		NumFollowers: followers,
		NumFollowing: following,
		Posts:        posts,
	}, nil
}

// GetAllPosts returns the profile's posts, newest first.
func (s *Service) GetAllPosts(ctx context.Context, profileID uint) ([]types.Post, error) {
	if _, err := s.requireProfile(ctx, s.store, profileID); err != nil {
		return nil, err
	}

	return s.store.Posts().FindByProfileIDs(ctx, []uint{profileID})
}

func (s *Service) GetPost(ctx context.Context, id uint) (*types.Post, error) {
	return s.store.Posts().Get(ctx, id)
}

// GetPostDetail bundles a post with its photos, comments and like count.
func (s *Service) GetPostDetail(ctx context.Context, id uint) (*types.PostDetail, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	photos, err := s.GetAllPhotos(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.GetAllComments(ctx, id)
	if err != nil {
		return nil, err
	}

	likes, err := s.GetNumLikes(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &types.PostDetail{
		Post:     *post,
		Photos:   s.PhotoViews(photos),
		Comments: comments,
		NumLikes: likes,
	}

	if len(detail.Photos) > 0 {
		first := detail.Photos[0]
		detail.FirstPhoto = &first
	}

	return detail, nil
}

// GetAllPhotos returns the post's photos in ascending id order.
func (s *Service) GetAllPhotos(ctx context.Context, postID uint) ([]types.Photo, error) {
	if _, err := s.requirePost(ctx, s.store, postID); err != nil {
		return nil, err
	}

	return s.store.Photos().FindByPostID(ctx, postID)
}

// GetFirstPhoto returns the lowest-id photo of the post, or nil when it has none.
func (s *Service) GetFirstPhoto(ctx context.Context, postID uint) (*types.Photo, error) {
	if _, err := s.requirePost(ctx, s.store, postID); err != nil {
		return nil, err
	}

	photo, err := s.store.Photos().FirstByPostID(ctx, postID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}

	return photo, err
}

// PhotoURL is the photo's display URL, or "" when it has no source.
func (s *Service) PhotoURL(p types.Photo) string {
	var resolve func(string) string
	if s.media != nil {
		resolve = s.media.URL
	}

	return p.DisplayURL(resolve)
}

func (s *Service) PhotoView(p types.Photo) types.PhotoView {
	view := types.PhotoView{
		ID:        p.ID,
		PostID:    p.PostID,
		Timestamp: p.Timestamp,
	}

	if url := s.PhotoURL(p); url != "" {
		view.URL = &url
	}

	return view
}

func (s *Service) PhotoViews(photos []types.Photo) []types.PhotoView {
	views := make([]types.PhotoView, 0, len(photos))
	for _, p := range photos {
		views = append(views, s.PhotoView(p))
	}
	return views
}

// profilesInOrder loads the profiles for ids keeping the order of ids.
func (s *Service) profilesInOrder(ctx context.Context, ids []uint) ([]types.Profile, error) {
	found, err := s.store.Profiles().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]types.Profile, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	profiles := make([]types.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			profiles = append(profiles, p)
		}
	}

	return profiles, nil
}

// GetFollowers returns the profiles following profileID, in the order they
// started following.
func (s *Service) GetFollowers(ctx context.Context, profileID uint) ([]types.Profile, error) {
	if _, err := s.requireProfile(ctx, s.store, profileID); err != nil {
		return nil, err
	}

	edges, err := s.store.Follows().FindByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowerProfileID)
	}

	return s.profilesInOrder(ctx, ids)
}

// GetFollowing returns the profiles profileID follows, in the order it
// followed them.
func (s *Service) GetFollowing(ctx context.Context, profileID uint) ([]types.Profile, error) {
	if _, err := s.requireProfile(ctx, s.store, profileID); err != nil {
		return nil, err
	}

	ids, err := s.followingIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return s.profilesInOrder(ctx, ids)
}

func (s *Service) followingIDs(ctx context.Context, profileID uint) ([]uint, error) {
	edges, err := s.store.Follows().FindByFollowerID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ProfileID)
	}

	return ids, nil
}

func (s *Service) GetNumFollowers(ctx context.Context, profileID uint) (int64, error) {
	if _, err := s.requireProfile(ctx, s.store, profileID); err != nil {
		return 0, err
	}

	return s.store.Follows().CountByProfileID(ctx, profileID)
}

func (s *Service) GetNumFollowing(ctx context.Context, profileID uint) (int64, error) {
	if _, err := s.requireProfile(ctx, s.store, profileID); err != nil {
		return 0, err
	}

	return s.store.Follows().CountByFollowerID(ctx, profileID)
}

// GetPostFeed returns every post by a profile that profileID follows,
// newest first across all of them.
func (s *Service) GetPostFeed(ctx context.Context, profileID uint) ([]types.Post, error) {
	if _, err := s.requireProfile(ctx, s.store, profileID); err != nil {
		return nil, err
	}

	ids, err := s.followingIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return s.store.Posts().FindByProfileIDs(ctx, ids)
}

// GetAllComments returns the post's comments, oldest first.
func (s *Service) GetAllComments(ctx context.Context, postID uint) ([]types.Comment, error) {
	if _, err := s.requirePost(ctx, s.store, postID); err != nil {
		return nil, err
	}

	return s.store.Comments().FindByPostID(ctx, postID)
}

func (s *Service) GetComment(ctx context.Context, id uint) (*types.Comment, error) {
	return s.store.Comments().Get(ctx, id)
}

func (s *Service) GetLikes(ctx context.Context, postID uint) ([]types.Like, error) {
	if _, err := s.requirePost(ctx, s.store, postID); err != nil {
		return nil, err
	}

	return s.store.Likes().FindByPostID(ctx, postID)
}

func (s *Service) GetNumLikes(ctx context.Context, postID uint) (int64, error) {
	if _, err := s.requirePost(ctx, s.store, postID); err != nil {
		return 0, err
	}

	return s.store.Likes().CountByPostID(ctx, postID)
}
