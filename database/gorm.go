package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"minigram/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the relational backend. Foreign keys are checked explicitly
// on write so the same errors come back whatever the dialect enforces.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

var _ Store = (*GormStore)(nil)

// Migrate creates or updates every table.
func (s *GormStore) Migrate() error {
	return s.DB.AutoMigrate(types.Models()...)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func (s *GormStore) Profiles() ProfileRepository { return gormProfiles{s.DB} }
func (s *GormStore) Posts() PostRepository       { return gormPosts{s.DB} }
func (s *GormStore) Photos() PhotoRepository     { return gormPhotos{s.DB} }
func (s *GormStore) Follows() FollowRepository   { return gormFollows{s.DB} }
func (s *GormStore) Comments() CommentRepository { return gormComments{s.DB} }
func (s *GormStore) Likes() LikeRepository       { return gormLikes{s.DB} }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-folded LIKE pattern matching query anywhere.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(foldASCII(query)) + "%"
}

// foldColumn lowers A-Z in column. Postgres LOWER follows the collation and
// would fold non-ASCII letters too, SQLite LOWER is ASCII-only already.
func foldColumn(db *gorm.DB, column string) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "TRANSLATE(" + column + ", 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz')"
	}
	return "LOWER(" + column + ")"
}

const likeClause = ` LIKE ? ESCAPE '\'`

// newestFirstOrder sorts posts by timestamp then id, both descending.
var newestFirstOrder = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "timestamp"}, Desc: true},
	{Column: clause.Column{Name: "id"}, Desc: true},
}}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", types.ErrNotFound, what, id)
	}
	return err
}

func exists(db *gorm.DB, model any, id uint) (bool, error) {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// requireParent fails with ErrConstraintViolation when the referenced row is missing.
func requireParent(db *gorm.DB, model any, id uint, what string) error {
	ok, err := exists(db, model, id)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: references missing %s %d", types.ErrConstraintViolation, what, id)
	}
	return nil
}

// Profiles

type gormProfiles struct{ db *gorm.DB }

func (r gormProfiles) Create(ctx context.Context, p *types.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r gormProfiles) Get(ctx context.Context, id uint) (*types.Profile, error) {
	var p types.Profile
	if err := r.db.WithContext(ctx).Take(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "profile", id)
	}
	return &p, nil
}

func (r gormProfiles) List(ctx context.Context) ([]types.Profile, error) {
	profiles := []types.Profile{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&profiles).Error
	return profiles, err
}

func (r gormProfiles) ListByIDs(ctx context.Context, ids []uint) ([]types.Profile, error) {
	profiles := []types.Profile{}
	if len(ids) == 0 {
		return profiles, nil
	}

	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&profiles).Error
	return profiles, err
}

func (r gormProfiles) Update(ctx context.Context, p *types.Profile) error {
	res := r.db.WithContext(ctx).Model(&types.Profile{}).Where("id = ?", p.ID).Updates(map[string]any{
		"display_name":      p.DisplayName,
		"profile_image_url": p.ProfileImageURL,
		"bio_text":          p.BioText,
	})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: profile %d", types.ErrNotFound, p.ID)
	}
	return nil
}

func (r gormProfiles) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&types.Profile{}, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: profile %d", types.ErrNotFound, id)
	}
	return nil
}

func (r gormProfiles) Search(ctx context.Context, query string) ([]types.Profile, error) {
	pattern := likePattern(query)
	profiles := []types.Profile{}

	err := r.db.WithContext(ctx).
		Where(foldColumn(r.db, "username")+likeClause+" OR "+foldColumn(r.db, "display_name")+likeClause+" OR "+foldColumn(r.db, "bio_text")+likeClause, pattern, pattern, pattern).
		Order("id ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r gormProfiles) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &types.Profile{}, id)
}

// Posts

type gormPosts struct{ db *gorm.DB }

func (r gormPosts) Create(ctx context.Context, p *types.Post) error {
	db := r.db.WithContext(ctx)
	if err := requireParent(db, &types.Profile{}, p.ProfileID, "profile"); err != nil {
		return err
	}
	return db.Create(p).Error
}

func (r gormPosts) Get(ctx context.Context, id uint) (*types.Post, error) {
	var p types.Post
	if err := r.db.WithContext(ctx).Take(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "post", id)
	}
	return &p, nil
}

func (r gormPosts) Update(ctx context.Context, p *types.Post) error {
	res := r.db.WithContext(ctx).Model(&types.Post{}).Where("id = ?", p.ID).Update("caption", p.Caption)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %d", types.ErrNotFound, p.ID)
	}
	return nil
}

func (r gormPosts) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&types.Post{}, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %d", types.ErrNotFound, id)
	}
	return nil
}

func (r gormPosts) FindByProfileIDs(ctx context.Context, profileIDs []uint) ([]types.Post, error) {
	posts := []types.Post{}
	if len(profileIDs) == 0 {
		return posts, nil
	}

	err := r.db.WithContext(ctx).
		Where("profile_id IN ?", profileIDs).
		Order(newestFirstOrder).
		Find(&posts).Error
	return posts, err
}

func (r gormPosts) Search(ctx context.Context, query string) ([]types.Post, error) {
	posts := []types.Post{}

	err := r.db.WithContext(ctx).
		Where(foldColumn(r.db, "caption")+likeClause, likePattern(query)).
		Order(newestFirstOrder).
		Find(&posts).Error
	return posts, err
}

func (r gormPosts) Exists(ctx context.Context, id uint) (bool, error) {
	return exists(r.db.WithContext(ctx), &types.Post{}, id)
}

// Photos

type gormPhotos struct{ db *gorm.DB }

func (r gormPhotos) Create(ctx context.Context, p *types.Photo) error {
	db := r.db.WithContext(ctx)
	if err := requireParent(db, &types.Post{}, p.PostID, "post"); err != nil {
		return err
	}
	return db.Create(p).Error
}

func (r gormPhotos) FindByPostID(ctx context.Context, postID uint) ([]types.Photo, error) {
	photos := []types.Photo{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&photos).Error
	return photos, err
}

func (r gormPhotos) FirstByPostID(ctx context.Context, postID uint) (*types.Photo, error) {
	var p types.Photo
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no photos on post %d", types.ErrNotFound, postID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r gormPhotos) DeleteByPostID(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&types.Photo{})
	return res.RowsAffected, res.Error
}

// Follows

type gormFollows struct{ db *gorm.DB }

func (r gormFollows) Create(ctx context.Context, f *types.Follow) error {
	db := r.db.WithContext(ctx)
	if err := requireParent(db, &types.Profile{}, f.ProfileID, "profile"); err != nil {
		return err
	}
	if err := requireParent(db, &types.Profile{}, f.FollowerProfileID, "follower profile"); err != nil {
		return err
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		existing, err := r.Find(ctx, f.ProfileID, f.FollowerProfileID)
		if err != nil {
			return err
		}
		*f = *existing
	}
	return nil
}

func (r gormFollows) Find(ctx context.Context, profileID, followerID uint) (*types.Follow, error) {
	var f types.Follow
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND follower_profile_id = ?", profileID, followerID).
		Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: follow %d -> %d", types.ErrNotFound, followerID, profileID)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r gormFollows) Delete(ctx context.Context, profileID, followerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("profile_id = ? AND follower_profile_id = ?", profileID, followerID).
		Delete(&types.Follow{})
	return res.RowsAffected, res.Error
}

func (r gormFollows) FindByProfileID(ctx context.Context, profileID uint) ([]types.Follow, error) {
	follows := []types.Follow{}
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Order("id ASC").Find(&follows).Error
	return follows, err
}

func (r gormFollows) FindByFollowerID(ctx context.Context, followerID uint) ([]types.Follow, error) {
	follows := []types.Follow{}
	err := r.db.WithContext(ctx).Where("follower_profile_id = ?", followerID).Order("id ASC").Find(&follows).Error
	return follows, err
}

func (r gormFollows) CountByProfileID(ctx context.Context, profileID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&types.Follow{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n, err
}

func (r gormFollows) CountByFollowerID(ctx context.Context, followerID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&types.Follow{}).Where("follower_profile_id = ?", followerID).Count(&n).Error
	return n, err
}

func (r gormFollows) DeleteByProfileID(ctx context.Context, profileID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("profile_id = ? OR follower_profile_id = ?", profileID, profileID).
		Delete(&types.Follow{})
	return res.RowsAffected, res.Error
}

// Comments

type gormComments struct{ db *gorm.DB }

func (r gormComments) Create(ctx context.Context, c *types.Comment) error {
	db := r.db.WithContext(ctx)
	if err := requireParent(db, &types.Post{}, c.PostID, "post"); err != nil {
		return err
	}
	if err := requireParent(db, &types.Profile{}, c.ProfileID, "profile"); err != nil {
		return err
	}
	return db.Create(c).Error
}

func (r gormComments) Get(ctx context.Context, id uint) (*types.Comment, error) {
	var c types.Comment
	if err := r.db.WithContext(ctx).Take(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "comment", id)
	}
	return &c, nil
}

func (r gormComments) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&types.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: comment %d", types.ErrNotFound, id)
	}
	return nil
}

func (r gormComments) FindByPostID(ctx context.Context, postID uint) ([]types.Comment, error) {
	comments := []types.Comment{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error
	return comments, err
}

func (r gormComments) DeleteByPostID(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&types.Comment{})
	return res.RowsAffected, res.Error
}

func (r gormComments) DeleteByProfileID(ctx context.Context, profileID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&types.Comment{})
	return res.RowsAffected, res.Error
}

// Likes

type gormLikes struct{ db *gorm.DB }

func (r gormLikes) Create(ctx context.Context, l *types.Like) error {
	db := r.db.WithContext(ctx)
	if err := requireParent(db, &types.Post{}, l.PostID, "post"); err != nil {
		return err
	}
	if err := requireParent(db, &types.Profile{}, l.ProfileID, "profile"); err != nil {
		return err
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(l)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		existing, err := r.Find(ctx, l.PostID, l.ProfileID)
		if err != nil {
			return err
		}
		*l = *existing
	}
	return nil
}

func (r gormLikes) Find(ctx context.Context, postID, profileID uint) (*types.Like, error) {
	var l types.Like
	err := r.db.WithContext(ctx).Where("post_id = ? AND profile_id = ?", postID, profileID).Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: like of post %d by %d", types.ErrNotFound, postID, profileID)
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r gormLikes) Delete(ctx context.Context, postID, profileID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND profile_id = ?", postID, profileID).Delete(&types.Like{})
	return res.RowsAffected, res.Error
}

func (r gormLikes) FindByPostID(ctx context.Context, postID uint) ([]types.Like, error) {
	likes := []types.Like{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&likes).Error
	return likes, err
}

func (r gormLikes) CountByPostID(ctx context.Context, postID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&types.Like{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

func (r gormLikes) DeleteByPostID(ctx context.Context, postID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&types.Like{})
	return res.RowsAffected, res.Error
}

func (r gormLikes) DeleteByProfileID(ctx context.Context, profileID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&types.Like{})
	return res.RowsAffected, res.Error
}
