package sessions

import (
	"net/http"

	"minigram/api"
	docs "minigram/doclib"
	"minigram/state"
	"minigram/uapi"
)

func LogoutDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Logout",
		Description: "Revokes the session token sent with the request.",
		Status:      http.StatusNoContent,
	}
}

func Logout(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	if err := state.Sessions.Revoke(d.Context, api.SessionToken(r)); err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.DefaultResponse(http.StatusNoContent)
}
