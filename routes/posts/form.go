package posts

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"minigram/media"
	"minigram/uapi"
)

const maxFormMemory = 32 << 20

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "multipart/form-data"
}

// openedFiles holds the uploads read from a form until the handler is done.
type openedFiles []multipart.File

func (o openedFiles) Close() {
	for _, f := range o {
		f.Close()
	}
}

func firstValue(form *multipart.Form, field string) string {
	if v := form.Value[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func formFiles(form *multipart.Form, field string) ([]media.Upload, openedFiles, error) {
	var (
		uploads []media.Upload
		opened  openedFiles
	)

	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			opened.Close()
			return nil, nil, err
		}
		opened = append(opened, f)

		uploads = append(uploads, media.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	return uploads, opened, nil
}

func parseForm(r *http.Request) (uapi.HttpResponse, bool) {
	err := r.ParseMultipartForm(maxFormMemory)
	if err == nil {
		return uapi.HttpResponse{}, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return uapi.HttpResponse{
			Status: http.StatusRequestEntityTooLarge,
			Json:   uapi.State.DefaultResponder.New("Upload is too large", nil),
		}, false
	}

	return uapi.HttpResponse{
		Status: http.StatusBadRequest,
		Json: uapi.State.DefaultResponder.New("Invalid form", map[string]string{
			"error": err.Error(),
		}),
	}, false
}
