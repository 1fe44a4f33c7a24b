package posts

import (
	"net/http"

	docs "minigram/doclib"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"
)

func GetLikesDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Likes",
		Description: "Returns the likes on a post with their count.",
		Params:      postIDParam(),
		Resp:        types.LikesResponse{},
	}
}

func GetLikes(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	likes, err := state.Social.GetLikes(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Json: types.LikesResponse{
			Likes:    likes,
			NumLikes: int64(len(likes)),
		},
	}
}

func LikeDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Like Post",
		Description: "Likes a post as the session's profile. Liking twice is a no-op.",
		Params:      postIDParam(),
		Resp:        types.Like{},
	}
}

func Like(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	profileID, ok := d.Auth.ProfileID()
	if !ok {
		return uapi.DefaultResponse(http.StatusUnauthorized)
	}

	like, err := state.Social.Like(d.Context, id, profileID)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: like}
}

func UnlikeDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Unlike Post",
		Description: "Removes the session's like from a post.",
		Params:      postIDParam(),
		Status:      http.StatusNoContent,
	}
}

func Unlike(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	profileID, ok := d.Auth.ProfileID()
	if !ok {
		return uapi.DefaultResponse(http.StatusUnauthorized)
	}

	if err := state.Social.Unlike(d.Context, id, profileID); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}
