package types

import "time"

// ApiError is the body of every non-2xx JSON response.
type ApiError struct {
	Success bool              `json:"success" description:"Always false"`
	Message string            `json:"message" description:"Message of the error"`
	Context map[string]string `json:"context,omitempty" description:"Per-field error details, if any"`
}

// Request payloads

type CreateProfile struct {
	Username        string `json:"username" validate:"required,notblank,nospaces,max=64" msg:"Username is required and may not contain spaces"`
	DisplayName     string `json:"display_name" validate:"max=128" msg:"Display name must be at most 128 characters"`
	ProfileImageURL string `json:"profile_image_url" validate:"omitempty,httporhttps" msg:"Profile image must be an http(s) link"`
	BioText         string `json:"bio_text" validate:"max=2048" msg:"Bio must be at most 2048 characters"`
}

// UpdateProfile carries the editable profile fields. Nil fields are left alone.
type UpdateProfile struct {
	DisplayName     *string `json:"display_name" validate:"omitempty,max=128" msg:"Display name must be at most 128 characters"`
	ProfileImageURL *string `json:"profile_image_url" validate:"omitempty,httporhttps" msg:"Profile image must be an http(s) link"`
	BioText         *string `json:"bio_text" validate:"omitempty,max=2048" msg:"Bio must be at most 2048 characters"`
}

type CreatePost struct {
	Caption   *string  `json:"caption" validate:"required,notblank" msg:"A caption is required"`
	ImageURLs []string `json:"image_urls" validate:"dive,httporhttps" msg:"Image links must be http(s)" amsg:"Every image link must be http(s)"`
}

type UpdatePost struct {
	Caption *string `json:"caption" validate:"required,notblank" msg:"A caption is required"`
}

type AttachPhoto struct {
	ImageURL string `json:"image_url" validate:"omitempty,httporhttps" msg:"Image link must be http(s)"`
}

type CreateComment struct {
	Text string `json:"text" validate:"required,notblank,max=2200" msg:"Comment text is required"`
}

// Response projections

type PhotoView struct {
	ID        uint      `json:"id" description:"The photo's ID"`
	PostID    uint      `json:"post_id" description:"The post the photo belongs to"`
	URL       *string   `json:"url" description:"Where to load the image from, null when the photo has no source"`
	Timestamp time.Time `json:"timestamp" description:"When the photo was attached"`
}

type ProfileDetail struct {
	Profile      Profile `json:"profile" description:"The profile"`
	NumFollowers int64   `json:"num_followers" description:"How many profiles follow this one"`
	NumFollowing int64   `json:"num_following" description:"How many profiles this one follows"`
	Posts        []Post  `json:"posts" description:"The profile's posts, newest first"`
}

type PostDetail struct {
	Post       Post        `json:"post" description:"The post"`
	Photos     []PhotoView `json:"photos" description:"Attached photos, in upload order"`
	FirstPhoto *PhotoView  `json:"first_photo" description:"The earliest attached photo, if any"`
	Comments   []Comment   `json:"comments" description:"Comments, oldest first"`
	NumLikes   int64       `json:"num_likes" description:"Number of likes"`
}

type LikesResponse struct {
	Likes    []Like `json:"likes"`
	NumLikes int64  `json:"num_likes"`
}

type DeletePostResponse struct {
	ProfileID uint `json:"profile_id" description:"The profile that owned the deleted post"`
}

type SessionResponse struct {
	Token   string  `json:"token" description:"Session token to send in the Authorization header"`
	Profile Profile `json:"profile" description:"The newly created profile"`
}

type SearchResults struct {
	Query    string    `json:"query"`
	Posts    []Post    `json:"posts"`
	Profiles []Profile `json:"profiles"`
}
