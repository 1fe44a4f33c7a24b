package posts

import (
	"minigram/api"
	"minigram/uapi"

	"github.com/go-chi/chi/v5"
)

type Router struct{}

func (b Router) Tag() (string, string) {
	return "Posts", "Posts with their photos, comments and likes."
}

func (b Router) Routes(r *chi.Mux) {
	session := []uapi.AuthType{{Type: api.TargetTypeProfile}}

	uapi.Route{
		Pattern: "/posts",
		OpId:    "create_post",
		Method:  uapi.POST,
		Docs:    CreatePostDocs,
		Handler: CreatePost,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}",
		OpId:    "get_post",
		Method:  uapi.GET,
		Docs:    GetPostDocs,
		Handler: GetPost,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}",
		OpId:    "update_post",
		Method:  uapi.PATCH,
		Docs:    UpdatePostDocs,
		Handler: UpdatePost,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}",
		OpId:    "delete_post",
		Method:  uapi.DELETE,
		Docs:    DeletePostDocs,
		Handler: DeletePost,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}/photos",
		OpId:    "get_all_photos",
		Method:  uapi.GET,
		Docs:    GetAllPhotosDocs,
		Handler: GetAllPhotos,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}/photos",
		OpId:    "attach_photo",
		Method:  uapi.POST,
		Docs:    AttachPhotoDocs,
		Handler: AttachPhoto,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}/comments",
		OpId:    "get_all_comments",
		Method:  uapi.GET,
		Docs:    GetAllCommentsDocs,
		Handler: GetAllComments,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}/comments",
		OpId:    "add_comment",
		Method:  uapi.POST,
		Docs:    AddCommentDocs,
		Handler: AddComment,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/comments/{id}",
		OpId:    "delete_comment",
		Method:  uapi.DELETE,
		Docs:    DeleteCommentDocs,
		Handler: DeleteComment,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}/likes",
		OpId:    "get_likes",
		Method:  uapi.GET,
		Docs:    GetLikesDocs,
		Handler: GetLikes,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}/like",
		OpId:    "like_post",
		Method:  uapi.PUT,
		Docs:    LikeDocs,
		Handler: Like,
		Auth:    session,
	}.Route(r)

	uapi.Route{
		Pattern: "/posts/{id}/like",
		OpId:    "unlike_post",
		Method:  uapi.DELETE,
		Docs:    UnlikeDocs,
		Handler: Unlike,
		Auth:    session,
	}.Route(r)
}
