package profiles

import (
	"net/http"

	"minigram/api"
	docs "minigram/doclib"
	"minigram/routes/posts"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"

	"go.uber.org/zap"
)

func profileIDParam() []docs.Parameter {
	return []docs.Parameter{docs.PathID("id", "The profile's ID")}
}

func ListProfilesDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "List Profiles",
		Description: "Returns every profile, oldest first.",
		Resp:        []types.Profile{},
	}
}

func ListProfiles(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	profiles, err := state.Social.ListProfiles(d.Context)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: profiles}
}

func CreateProfileDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Profile",
		Description: "Creates a profile and returns a session token acting as it.",
		Req:         types.CreateProfile{},
		Resp:        types.SessionResponse{},
		Status:      http.StatusCreated,
	}
}

func CreateProfile(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	var payload types.CreateProfile

	hresp, ok := uapi.MarshalReq(r, &payload)
	if !ok {
		return hresp
	}

	profile, err := state.Social.CreateProfile(d.Context, payload)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	token, err := state.Sessions.Issue(d.Context, profile.ID)
	if err != nil {
		state.Logger.Error("Failed to issue session", zap.Error(err), zap.Uint("profileId", profile.ID))
		return uapi.DefaultResponse(http.StatusInternalServerError)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json: types.SessionResponse{
			Token:   token,
			Profile: *profile,
		},
	}
}

func GetProfileDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Profile",
		Description: "Returns a profile with its posts and follow counts.",
		Params:      profileIDParam(),
		Resp:        types.ProfileDetail{},
	}
}

func GetProfile(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	detail, err := state.Social.GetProfileDetail(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: detail}
}

func UpdateProfileDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update Profile",
		Description: "Changes the display name, profile image or bio. Omitted fields are kept.",
		Params:      profileIDParam(),
		Req:         types.UpdateProfile{},
		Resp:        types.Profile{},
	}
}

func UpdateProfile(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	var payload types.UpdateProfile

	hresp, ok = uapi.MarshalReq(r, &payload)
	if !ok {
		return hresp
	}

	profile, err := state.Social.UpdateProfile(d.Context, id, payload)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: profile}
}

func DeleteProfileDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Profile",
		Description: "Deletes the profile with its posts, comments, likes and follows, then ends the session.",
		Params:      profileIDParam(),
		Status:      http.StatusNoContent,
	}
}

func DeleteProfile(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	if err := state.Social.DeleteProfile(d.Context, id); err != nil {
		return uapi.ErrorResponse(err)
	}

	if err := state.Sessions.Revoke(d.Context, api.SessionToken(r)); err != nil {
		state.Logger.Warn("Failed to revoke session of deleted profile", zap.Error(err), zap.Uint("profileId", id))
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}

func GetAllPostsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Posts",
		Description: "Returns the profile's posts, newest first.",
		Params:      profileIDParam(),
		Resp:        []types.Post{},
	}
}

func GetAllPosts(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	posts, err := state.Social.GetAllPosts(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: posts}
}

func CreateProfilePostDocs() *docs.Doc {
	d := posts.CreatePostDocs()
	d.Params = profileIDParam()
	return d
}

func CreateProfilePost(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	return posts.CreateFor(d, r, id)
}

func GetPostFeedDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Feed",
		Description: "Returns the posts of every profile this profile follows, newest first.",
		Params:      profileIDParam(),
		Resp:        []types.Post{},
	}
}

func GetPostFeed(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	feed, err := state.Social.GetPostFeed(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: feed}
}
