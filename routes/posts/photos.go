package posts

import (
	"net/http"

	docs "minigram/doclib"
	"minigram/media"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"
)

func GetAllPhotosDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Get Photos",
		Description: "Returns the post's photos in the order they were attached.",
		Params:      postIDParam(),
		Resp:        []types.PhotoView{},
	}
}

func GetAllPhotos(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	photos, err := state.Social.GetAllPhotos(d.Context, id)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: state.Social.PhotoViews(photos)}
}

func AttachPhotoDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Attach Photo",
		Description: "Adds a photo to a post the session's profile wrote. Send either image_url or, in a multipart form, a single files part.",
		Params:      postIDParam(),
		Req:         types.AttachPhoto{},
		FormReq:     true,
		Resp:        types.PhotoView{},
		Status:      http.StatusCreated,
	}
}

func AttachPhoto(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	id, hresp, ok := uapi.IDParam(r, "id")
	if !ok {
		return hresp
	}

	if _, hresp, ok := ownPost(d, id); !ok {
		return hresp
	}

	var (
		payload types.AttachPhoto
		file    *media.Upload
	)

	if isMultipart(r) {
		hresp, ok := parseForm(r)
		if !ok {
			return hresp
		}
		defer r.MultipartForm.RemoveAll()

		payload.ImageURL = firstValue(r.MultipartForm, "image_url")

		uploads, opened, err := formFiles(r.MultipartForm, "files")
		if err != nil {
			return uapi.ErrorResponse(err)
		}
		defer opened.Close()

		if len(uploads) > 1 {
			return uapi.ErrorResponse(types.Invalid("only one file can be attached at a time"))
		}
		if len(uploads) == 1 {
			file = &uploads[0]
		}
	} else {
		hresp, ok := uapi.MarshalReq(r, &payload)
		if !ok {
			return hresp
		}
	}

	photo, err := state.Social.AttachPhoto(d.Context, id, payload, file)
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{
		Status: http.StatusCreated,
		Json:   state.Social.PhotoView(*photo),
	}
}
