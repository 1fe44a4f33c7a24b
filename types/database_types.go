package types

import (
	"time"
)

// Profile is a user identity. Posts, authored comments, likes and follow
// edges are owned by it and removed with it.
type Profile struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id" description:"The profile's ID"`
	Username        string    `gorm:"type:text;not null;index" json:"username" description:"The profile's username"`
	DisplayName     string    `gorm:"type:text" json:"display_name" description:"The profile's display name"`
	ProfileImageURL string    `gorm:"type:text" json:"profile_image_url" description:"Link to the profile's avatar"`
	BioText         string    `gorm:"type:text" json:"bio_text" description:"The profile's bio"`
	JoinDate        time.Time `gorm:"autoCreateTime" json:"join_date" description:"When the profile was created"`
}

type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id" description:"The post's ID"`
	ProfileID uint      `gorm:"not null;index" json:"profile_id" description:"The profile that authored the post"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp" description:"When the post was created"`
	Caption   string    `gorm:"type:text;not null" json:"caption" description:"The post's caption"`
}

// Photo is attached to a post. Exactly one of ImageURL (an external link) or
// ImageFile (a media store key) is set.
type Photo struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ImageURL  string    `gorm:"type:text" json:"image_url"`
	ImageFile string    `gorm:"type:text" json:"image_file"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// DisplayURL returns the URL the photo should be rendered from, or "" when
// the photo has no source. fileURL resolves a media store key.
func (p Photo) DisplayURL(fileURL func(key string) string) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}

	if p.ImageFile != "" && fileURL != nil {
		return fileURL(p.ImageFile)
	}

	return ""
}

// Follow is a directed edge: FollowerProfileID follows ProfileID.
type Follow struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID         uint      `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"profile_id" description:"The followed profile"`
	FollowerProfileID uint      `gorm:"not null;index;uniqueIndex:idx_follow_pair" json:"follower_profile_id" description:"The following profile"`
	Timestamp         time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ProfileID uint      `gorm:"not null;index" json:"profile_id"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
	Text      string    `gorm:"type:text;not null" json:"text"`
}

type Like struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_like_pair" json:"post_id"`
	ProfileID uint      `gorm:"not null;index;uniqueIndex:idx_like_pair" json:"profile_id"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&Profile{},
		&Post{},
		&Photo{},
		&Follow{},
		&Comment{},
		&Like{},
	}
}
