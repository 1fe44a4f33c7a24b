package social

import (
	"context"

	"minigram/database"
	"minigram/media"
	"minigram/types"

	"go.uber.org/zap"
)

func (s *Service) CreateProfile(ctx context.Context, in types.CreateProfile) (*types.Profile, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	profile := &types.Profile{
		Username:        in.Username,
		DisplayName:     in.DisplayName,
		ProfileImageURL: in.ProfileImageURL,
		BioText:         in.BioText,
	}

	if err := s.store.Profiles().Create(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// UpdateProfile changes display_name, profile_image_url and bio_text. Fields
// left nil keep their value.
func (s *Service) UpdateProfile(ctx context.Context, id uint, in types.UpdateProfile) (*types.Profile, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.DisplayName != nil {
		profile.DisplayName = *in.DisplayName
	}
	if in.ProfileImageURL != nil {
		profile.ProfileImageURL = *in.ProfileImageURL
	}
	if in.BioText != nil {
		profile.BioText = *in.BioText
	}

	if err := s.store.Profiles().Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// DeleteProfile removes the profile, its posts with everything attached to
// them, its comments and likes on other posts, and every follow edge it is on.
func (s *Service) DeleteProfile(ctx context.Context, id uint) error {
	var files []string

	err := s.store.Transaction(ctx, func(tx database.Store) error {
		if _, err := s.requireProfile(ctx, tx, id); err != nil {
			return err
		}

		posts, err := tx.Posts().FindByProfileIDs(ctx, []uint{id})
		if err != nil {
			return err
		}

		for _, post := range posts {
			keys, err := s.deletePost(ctx, tx, post.ID)
			if err != nil {
				return err
			}
			files = append(files, keys...)
		}

		if _, err := tx.Comments().DeleteByProfileID(ctx, id); err != nil {
			return err
		}

		if _, err := tx.Likes().DeleteByProfileID(ctx, id); err != nil {
			return err
		}

		if _, err := tx.Follows().DeleteByProfileID(ctx, id); err != nil {
			return err
		}

		return tx.Profiles().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.discard(files)
	return nil
}

// upload stores every file, removing the ones already stored if one fails.
func (s *Service) upload(ctx context.Context, files []media.Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	if s.media == nil {
		return nil, types.Invalid("file uploads are not enabled on this server")
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		key, err := s.media.Put(ctx, f)
		if err != nil {
			s.discard(keys)
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// CreatePost creates a post owned by profileID with one photo per image URL
// and per uploaded file. The post and its photos are written atomically.
func (s *Service) CreatePost(ctx context.Context, profileID uint, in types.CreatePost, files []media.Upload) (*types.Post, []types.Photo, error) {
	if err := s.validate(in); err != nil {
		return nil, nil, err
	}

	if _, err := s.requireProfile(ctx, s.store, profileID); err != nil {
		return nil, nil, err
	}

	keys, err := s.upload(ctx, files)
	if err != nil {
		return nil, nil, err
	}

	post := &types.Post{
		ProfileID: profileID,
		Caption:   *in.Caption,
	}
	var photos []types.Photo

	err = s.store.Transaction(ctx, func(tx database.Store) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}

		photos = make([]types.Photo, 0, len(in.ImageURLs)+len(keys))

		for _, url := range in.ImageURLs {
			photo := types.Photo{PostID: post.ID, ImageURL: url}
			if err := tx.Photos().Create(ctx, &photo); err != nil {
				return err
			}
			photos = append(photos, photo)
		}

		for _, key := range keys {
			photo := types.Photo{PostID: post.ID, ImageFile: key}
			if err := tx.Photos().Create(ctx, &photo); err != nil {
				return err
			}
			photos = append(photos, photo)
		}

		return nil
	})
	if err != nil {
		s.discard(keys)
		return nil, nil, err
	}

	return post, photos, nil
}

// AttachPhoto adds one photo to an existing post, from either an image URL
// or an uploaded file.
func (s *Service) AttachPhoto(ctx context.Context, postID uint, in types.AttachPhoto, file *media.Upload) (*types.Photo, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if (in.ImageURL == "") == (file == nil) {
		return nil, &types.ValidationError{
			Message: "a photo needs exactly one of image_url or an uploaded file",
			Fields:  map[string]string{"ImageURL": "exactly one image source is required"},
		}
	}

	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	photo := &types.Photo{PostID: postID, ImageURL: in.ImageURL}

	if file != nil {
		keys, err := s.upload(ctx, []media.Upload{*file})
		if err != nil {
			return nil, err
		}
		photo.ImageFile = keys[0]
	}

	if err := s.store.Photos().Create(ctx, photo); err != nil {
		if photo.ImageFile != "" {
			s.discard([]string{photo.ImageFile})
		}
		return nil, err
	}

	return photo, nil
}

// UpdatePost changes the caption only.
func (s *Service) UpdatePost(ctx context.Context, id uint, in types.UpdatePost) (*types.Post, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Caption = *in.Caption

	if err := s.store.Posts().Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// deletePost removes a post with its photos, comments and likes inside tx and
// returns the media keys of the removed photos.
func (s *Service) deletePost(ctx context.Context, tx database.Store, id uint) ([]string, error) {
	photos, err := tx.Photos().FindByPostID(ctx, id)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, p := range photos {
		if p.ImageFile != "" {
			keys = append(keys, p.ImageFile)
		}
	}

	if _, err := tx.Photos().DeleteByPostID(ctx, id); err != nil {
		return nil, err
	}

	if _, err := tx.Comments().DeleteByPostID(ctx, id); err != nil {
		return nil, err
	}

	if _, err := tx.Likes().DeleteByPostID(ctx, id); err != nil {
		return nil, err
	}

	if err := tx.Posts().Delete(ctx, id); err != nil {
		return nil, err
	}

	return keys, nil
}

// DeletePost removes the post and everything attached to it. It returns the
// id of the profile that owned the post.
func (s *Service) DeletePost(ctx context.Context, id uint) (uint, error) {
	var (
		owner uint
		files []string
	)

	err := s.store.Transaction(ctx, func(tx database.Store) error {
		post, err := s.requirePost(ctx, tx, id)
		if err != nil {
			return err
		}
		owner = post.ProfileID

		files, err = s.deletePost(ctx, tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.discard(files)
	return owner, nil
}

// Follow makes followerID follow profileID. Following twice returns the
// existing edge. A profile cannot follow itself.
func (s *Service) Follow(ctx context.Context, profileID, followerID uint) (*types.Follow, error) {
	if profileID == followerID {
		return nil, &types.ValidationError{
			Message: "a profile cannot follow itself",
			Fields:  map[string]string{"ProfileID": "must differ from the follower"},
		}
	}

	if _, err := s.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}

	follow := &types.Follow{ProfileID: profileID, FollowerProfileID: followerID}
	if err := s.store.Follows().Create(ctx, follow); err != nil {
		return nil, err
	}

	s.logger.Debug("Profile followed", zap.Uint("profileId", profileID), zap.Uint("followerId", followerID))
	return follow, nil
}

// Unfollow removes the edge if there is one.
func (s *Service) Unfollow(ctx context.Context, profileID, followerID uint) error {
	if _, err := s.GetProfile(ctx, profileID); err != nil {
		return err
	}

	_, err := s.store.Follows().Delete(ctx, profileID, followerID)
	return err
}

// Like records profileID liking postID. Liking twice returns the existing like.
func (s *Service) Like(ctx context.Context, postID, profileID uint) (*types.Like, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	like := &types.Like{PostID: postID, ProfileID: profileID}
	if err := s.store.Likes().Create(ctx, like); err != nil {
		return nil, err
	}

	return like, nil
}

// Unlike removes the like if there is one.
func (s *Service) Unlike(ctx context.Context, postID, profileID uint) error {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return err
	}

	_, err := s.store.Likes().Delete(ctx, postID, profileID)
	return err
}

func (s *Service) AddComment(ctx context.Context, postID, profileID uint, in types.CreateComment) (*types.Comment, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &types.Comment{PostID: postID, ProfileID: profileID, Text: in.Text}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, id uint) error {
	return s.store.Comments().Delete(ctx, id)
}
