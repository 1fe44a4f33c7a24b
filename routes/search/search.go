package search

import (
	"net/http"

	docs "minigram/doclib"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"
)

func SearchDocs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Search",
		Description: "Case-insensitive substring search. Posts match on caption, profiles on username, display name or bio. A blank query returns nothing.",
		Params: []docs.Parameter{
			docs.QueryString("q", "Text to look for", false),
		},
		Resp: types.SearchResults{},
	}
}

func Search(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	results, err := state.Social.Search(d.Context, r.URL.Query().Get("q"))
	if err != nil {
		return uapi.ErrorResponse(err)
	}

	return uapi.HttpResponse{Json: results}
}
