package posts

import (
	"net/http"

	docs "minigram/doclib"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"
)

func GetAllCommentsDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Comments",
		Description: "Returns the comments on a post, oldest first.",
		Params:      postIDParam(),
		Resp:        []types.Comment{},
	}
}

func GetAllComments(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	comments, err := state.Social.GetAllComments(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: comments}
}

func AddCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Add Comment",
		Description: "Comments on a post as the session's profile.",
		Params:      postIDParam(),
		Req:         types.CreateComment{},
		Resp:        types.Comment{},
		Status:      http.StatusCreated,
	}
}

func AddComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	profileID, ok := d.Auth.ProfileID()
	if !ok {
		return uapi.DefaultResponse(http.StatusUnauthorized)
	}

	var payload types.CreateComment

	hresp, ok = uapi.MarshalReq(r, &payload)
	if !ok {
		return hresp
	}

	comment, err := state.Social.AddComment(d.Context, id, profileID, payload)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   comment,
	}
}

func DeleteCommentDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Comment",
		Description: "Deletes a comment the session's profile wrote.",
		Params:      []docs.Parameter{docs.PathID("id", "The comment's ID")},
		Status:      http.StatusNoContent,
	}
}

func DeleteComment(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	profileID, ok := d.Auth.ProfileID()
	if !ok {
		return uapi.DefaultResponse(http.StatusUnauthorized)
	}

	comment, err := state.Social.GetComment(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	if comment.ProfileID != profileID {
		return uapi.DefaultResponse(http.StatusForbidden)
	}

	if err := state.Social.DeleteComment(d.Context, id); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}
