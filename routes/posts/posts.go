package posts

import (
	"net/http"

	docs "minigram/doclib"
	"minigram/media"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"
)

func postIDParam() []docs.Parameter {
	return []docs.Parameter{docs.PathID("id", "The post's ID")}
}

// ownPost loads the post and checks the session's profile wrote it.
func ownPost(d uapi.RouteData, id uint) (*types.Post, uapi.HttpResponse, bool) {
	profileID, ok := d.Auth.ProfileID()
	if !ok {
		return nil, uapi.DefaultResponse(http.StatusUnauthorized), false
	}

	post, err := state.Social.GetPost(d.Context, id)
	if err != nil {
		return nil, uapi.ErrorResponse(err), false
	}

	if post.ProfileID != profileID {
		return nil, uapi.DefaultResponse(http.StatusForbidden), false
	}

	return post, uapi.HttpResponse{}, true
}

func CreatePostDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Create Post",
		Description: "Creates a post with one photo per image link and per uploaded file. Accepts JSON, or a multipart form with caption, image_url values and files parts.",
		Req:         types.CreatePost{},
		FormReq:     true,
		Resp:        types.PostDetail{},
		Status:      http.StatusCreated,
	}
}

func CreatePost(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	profileID, ok := d.Auth.ProfileID()
	if !ok {
		return uapi.DefaultResponse(http.StatusUnauthorized)
	}

	return CreateFor(d, r, profileID)
}

// CreateFor creates a post owned by profileID from a JSON or multipart request.
func CreateFor(d uapi.RouteData, r *http.Request, profileID uint) uapi.HttpResponse {
	var (
		payload types.CreatePost
		files   []media.Upload
	)

	if isMultipart(r) {
		hresp, ok := parseForm(r)
		if !ok {
			return hresp
		}
		defer r.MultipartForm.RemoveAll()

		if v, ok := r.MultipartForm.Value["caption"]; ok && len(v) > 0 {
			payload.Caption = &v[0]
		}
		payload.ImageURLs = r.MultipartForm.Value["image_url"]

		uploads, opened, err := formFiles(r.MultipartForm, "files")
		if err != nil {
			return uapi.ErrorResponse(err)
		}
		defer opened.Close()

		files = uploads
	} else {
		hresp, ok := uapi.MarshalReq(r, &payload)
		if !ok {
			return hresp
		}
	}

	post, _, err := state.Social.CreatePost(d.Context, profileID, payload, files)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	detail, err := state.Social.GetPostDetail(d.Context, post.ID)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   detail,
	}
}

func GetPostDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Post",
		Description: "Returns a post with its photos, comments and like count.",
		Params:      postIDParam(),
		Resp:        types.PostDetail{},
	}
}

func GetPost(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	detail, err := state.Social.GetPostDetail(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: detail}
}

func UpdatePostDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Update Post",
		Description: "Changes the caption of a post the session's profile wrote.",
		Params:      postIDParam(),
		Req:         types.UpdatePost{},
		Resp:        types.Post{},
	}
}

func UpdatePost(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	if _, hresp, ok := ownPost(d, id); !ok {
		return hresp
	}

	var payload types.UpdatePost

	hresp, ok = uapi.MarshalReq(r, &payload)
	if !ok {
		return hresp
	}

	post, err := state.Social.UpdatePost(d.Context, id, payload)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: post}
}

func DeletePostDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Delete Post",
		Description: "Deletes a post with its photos, comments and likes. Returns the owning profile's ID.",
		Params:      postIDParam(),
		Resp:        types.DeletePostResponse{},
	}
}

func DeletePost(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	if _, hresp, ok := ownPost(d, id); !ok {
		return hresp
	}

	owner, err := state.Social.DeletePost(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: types.DeletePostResponse{ProfileID: owner}}
}
