package sessions

import (
	"minigram/api"
	"minigram/uapi"

	"github.com/go-chi/chi/v5"
)

type Router struct{}

func (b Router) Tag() (string, string) {
	return "Sessions", "Session tokens are handed out when a profile is created."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/sessions",
		OpId:    "logout",
		Method:  uapi.DELETE,
		Docs:    LogoutDocs,
		Handler: Logout,
		Auth:    []uapi.AuthType{{Type: api.TargetTypeProfile}},
	}.Route(r)
}
