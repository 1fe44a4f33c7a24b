package profiles

import (
	"net/http"

	docs "minigram/doclib"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"
)

func GetFollowersDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Followers",
		Description: "Returns the profiles following this one, in the order they followed.",
		Params:      profileIDParam(),
		Resp:        []types.Profile{},
	}
}

func GetFollowers(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	profiles, err := state.Social.GetFollowers(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: profiles}
}

func GetFollowingDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Following",
		Description: "Returns the profiles this one follows, in the order it followed them.",
		Params:      profileIDParam(),
		Resp:        []types.Profile{},
	}
}

func GetFollowing(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	profiles, err := state.Social.GetFollowing(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: profiles}
}

func FollowDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Follow Profile",
		Description: "Makes the session's profile follow this one. Following twice is a no-op.",
		Params:      profileIDParam(),
		Resp:        types.Follow{},
	}
}

func Follow(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	follower, ok := d.Auth.ProfileID()
	if !ok {
		return uapi.DefaultResponse(http.StatusUnauthorized)
	}

	follow, err := state.Social.Follow(d.Context, id, follower)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: follow}
}

func UnfollowDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unfollow Profile",
		Description: "Stops the session's profile following this one.",
		Params:      profileIDParam(),
		Status:      http.StatusNoContent,
	}
}

func Unfollow(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	follower, ok := d.Auth.ProfileID()
	if !ok {
		return uapi.DefaultResponse(http.StatusUnauthorized)
	}

	if err := state.Social.Unfollow(d.Context, id, follower); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}
