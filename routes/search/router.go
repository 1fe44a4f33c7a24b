package search

import (
	"minigram/uapi"

	"github.com/go-chi/chi/v5"
)

type Router struct{}

func (b Router) Tag() (string, string) {
	return "Search", "Find posts by caption and profiles by name or bio."
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/search",
		OpId:    "search",
		Method:  uapi.GET,
		Docs:    SearchDocs,
		Handler: Search,
	}.Route(r)
}
