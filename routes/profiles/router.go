package profiles

import (
	"minigram/api"
	"minigram/uapi"

	"github.com/go-chi/chi/v5"
)

type Router struct{}

func (b Router) Tag() (string, string) {
	return "Profiles", "Profiles, who they follow and what they post."
}

func (b Router) Routes(r *chi.Mux) {
	self := []uapi.AuthType{{Type: api.TargetTypeProfile, URLVar: "id"}}
	session := []uapi.AuthType{{Type: api.TargetTypeProfile}}

	uapi.Route{
		Pattern: "/profiles",
		OpId:    "list_profiles",
		Method:  uapi.GET,
		Docs:    ListProfilesDocs,
		Handler: ListProfiles,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles",
		OpId:    "create_profile",
		Method:  uapi.POST,
		Docs:    CreateProfileDocs,
		Handler: CreateProfile,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}",
		OpId:    "get_profile",
		Method:  uapi.GET,
		Docs:    GetProfileDocs,
		Handler: GetProfile,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}",
		OpId:    "update_profile",
		Method:  uapi.PATCH,
		Docs:    UpdateProfileDocs,
		Handler: UpdateProfile,
		Auth:    self,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}",
		OpId:    "delete_profile",
		Method:  uapi.DELETE,
		Docs:    DeleteProfileDocs,
		Handler: DeleteProfile,
		Auth:    self,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}/posts",
		OpId:    "get_all_posts",
		Method:  uapi.GET,
		Docs:    GetAllPostsDocs,
		Handler: GetAllPosts,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}/posts",
		OpId:    "create_profile_post",
		Method:  uapi.POST,
		Docs:    CreateProfilePostDocs,
		Handler: CreateProfilePost,
		Auth:    self,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}/followers",
		OpId:    "get_followers",
		Method:  uapi.GET,
		Docs:    GetFollowersDocs,
		Handler: GetFollowers,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}/following",
		OpId:    "get_following",
		Method:  uapi.GET,
		Docs:    GetFollowingDocs,
		Handler: GetFollowing,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}/feed",
		OpId:    "get_post_feed",
		Method:  uapi.GET,
		Docs:    GetPostFeedDocs,
		Handler: GetPostFeed,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}/follow",
		OpId:    "follow_profile",
		Method:  uapi.PUT,
		Docs:    FollowDocs,
		Handler: Follow,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/profiles/{id}/follow",
		OpId:    "unfollow_profile",
		Method:  uapi.DELETE,
		Docs:    UnfollowDocs,
		Handler: Unfollow,
		Auth:    session,
	}.Route(r)
}
