package main

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"minigram/api"
	"minigram/config"
	"minigram/database"
	"minigram/media"
	"minigram/sessions"
	"minigram/social"
	"minigram/state"
	"minigram/types"

	"github.com/go-chi/chi/v5"
	"github.com/infinitybotlist/eureka/jsonimpl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var router *chi.Mux

type memMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memMedia) Put(ctx context.Context, u media.Upload) (string, error) {
	b, err := io.ReadAll(u.Body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := media.ObjectKey(u.Name)
	m.objects[key] = b
	return key, nil
}

func (m *memMedia) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func (m *memMedia) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	return nil
}

func TestMain(m *testing.M) {
	state.Logger = zap.NewNop()
	state.Config = &config.Config{
		Server: config.Server{Port: ":8080", Env: "dev", CorsOrigin: "*"},
	}
	social.RegisterValidations(state.Validator)

	setupDocs()
	api.Setup()
	router = newRouter(api.NewRateLimiter(rate.Inf, 1))

	os.Exit(m.Run())
}

// reset gives each test an empty store and session table.
func reset(t *testing.T) *memMedia {
	t.Helper()

	files := &memMedia{objects: map[string][]byte{}}

	state.Store = database.NewMemoryStore()
	state.Media = files
	state.Sessions = sessions.NewMemoryStore(time.Hour)
	state.Social = social.New(state.Store, social.Options{
		Media:     files,
		Validator: state.Validator,
		Logger:    state.Logger,
	})

	return files
}

func do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := jsonimpl.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, jsonimpl.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func signup(t *testing.T, username string) (uint, string) {
	t.Helper()

	rec := do(t, "POST", "/profiles", "", types.CreateProfile{Username: username, DisplayName: strings.ToUpper(username)})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[types.SessionResponse](t, rec)
	require.NotEmpty(t, resp.Token)
	return resp.Profile.ID, resp.Token
}

func post(t *testing.T, token, caption string, urls ...string) types.PostDetail {
	t.Helper()

	rec := do(t, "POST", "/posts", token, types.CreatePost{Caption: &caption, ImageURLs: urls})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[types.PostDetail](t, rec)
}

func path(parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case uint:
			b.WriteString(strconv.FormatUint(uint64(v), 10))
		}
	}
	return b.String()
}

func TestSignupAndList(t *testing.T) {
	reset(t)

	alice, _ := signup(t, "alice")
	bob, _ := signup(t, "bob")

	rec := do(t, "GET", "/profiles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	profiles := decode[[]types.Profile](t, rec)
	require.Len(t, profiles, 2)
	assert.Equal(t, alice, profiles[0].ID)
	assert.Equal(t, bob, profiles[1].ID)
	assert.Equal(t, "ALICE", profiles[0].DisplayName)
}

func TestSignupValidation(t *testing.T) {
	reset(t)

	rec := do(t, "POST", "/profiles", "", types.CreateProfile{Username: "has space"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	apiErr := decode[types.ApiError](t, rec)
	assert.False(t, apiErr.Success)
	assert.Contains(t, apiErr.Context, "Username")

	rec = do(t, "POST", "/profiles", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePostRequiresSession(t *testing.T) {
	reset(t)

	alice, aliceToken := signup(t, "alice")
	_, bobToken := signup(t, "bob")
	caption := "hello"

	rec := do(t, "POST", "/posts", "", types.CreatePost{Caption: &caption})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, "POST", "/posts", "not-a-token", types.CreatePost{Caption: &caption})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Session-Invalid"))

	rec = do(t, "POST", path("/profiles/", alice, "/posts"), bobToken, types.CreatePost{Caption: &caption})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, "POST", path("/profiles/", alice, "/posts"), "Bearer "+aliceToken, types.CreatePost{Caption: &caption, ImageURLs: []string{"https://img.example.com/a.jpg"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	detail := decode[types.PostDetail](t, rec)
	assert.Equal(t, alice, detail.Post.ProfileID)
	require.Len(t, detail.Photos, 1)
	require.NotNil(t, detail.FirstPhoto)
	assert.Equal(t, "https://img.example.com/a.jpg", *detail.FirstPhoto.URL)
}

func TestCreatePostMultipart(t *testing.T) {
	files := reset(t)

	_, token := signup(t, "alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("caption", "two pics"))
	require.NoError(t, mw.WriteField("image_url", "https://img.example.com/first.jpg"))
	fw, err := mw.CreateFormFile("files", "second.PNG")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/posts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	detail := decode[types.PostDetail](t, rec)
	assert.Equal(t, "two pics", detail.Post.Caption)
	require.Len(t, detail.Photos, 2)
	assert.Equal(t, "https://img.example.com/first.jpg", *detail.Photos[0].URL)
	assert.True(t, strings.HasPrefix(*detail.Photos[1].URL, "https://cdn.example.com/photos/"))
	assert.True(t, strings.HasSuffix(*detail.Photos[1].URL, ".png"))
	assert.Len(t, files.objects, 1)
}

func TestFollowAndFeed(t *testing.T) {
	reset(t)

	alice, aliceToken := signup(t, "alice")
	bob, bobToken := signup(t, "bob")

	older := post(t, bobToken, "older")
	newer := post(t, bobToken, "newer")
	post(t, aliceToken, "not in alice's feed")

	rec := do(t, "PUT", path("/profiles/", bob, "/follow"), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Following twice keeps a single edge
	rec = do(t, "PUT", path("/profiles/", bob, "/follow"), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, "PUT", path("/profiles/", alice, "/follow"), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, "GET", path("/profiles/", bob, "/followers"), "", nil)
	followers := decode[[]types.Profile](t, rec)
	require.Len(t, followers, 1)
	assert.Equal(t, alice, followers[0].ID)

	rec = do(t, "GET", path("/profiles/", alice, "/following"), "", nil)
	following := decode[[]types.Profile](t, rec)
	require.Len(t, following, 1)
	assert.Equal(t, bob, following[0].ID)

	rec = do(t, "GET", path("/profiles/", alice, "/feed"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[[]types.Post](t, rec)
	require.Len(t, feed, 2)
	assert.Equal(t, newer.Post.ID, feed[0].ID)
	assert.Equal(t, older.Post.ID, feed[1].ID)

	rec = do(t, "GET", path("/profiles/", bob), "", nil)
	detail := decode[types.ProfileDetail](t, rec)
	assert.Equal(t, int64(1), detail.NumFollowers)
	assert.Equal(t, int64(0), detail.NumFollowing)
	assert.Len(t, detail.Posts, 2)

	rec = do(t, "DELETE", path("/profiles/", bob, "/follow"), aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, "GET", path("/profiles/", alice, "/feed"), "", nil)
	assert.Empty(t, decode[[]types.Post](t, rec))
}

func TestPostOwnership(t *testing.T) {
	reset(t)

	alice, aliceToken := signup(t, "alice")
	_, bobToken := signup(t, "bob")

	p := post(t, aliceToken, "mine")
	caption := "edited"

	rec := do(t, "PATCH", path("/posts/", p.Post.ID), bobToken, types.UpdatePost{Caption: &caption})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, "PATCH", path("/posts/", p.Post.ID), aliceToken, types.UpdatePost{Caption: &caption})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode[types.Post](t, rec).Caption)

	rec = do(t, "POST", path("/posts/", p.Post.ID, "/photos"), bobToken, types.AttachPhoto{ImageURL: "https://img.example.com/x.jpg"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, "POST", path("/posts/", p.Post.ID, "/photos"), aliceToken, types.AttachPhoto{ImageURL: "https://img.example.com/x.jpg"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, "GET", path("/posts/", p.Post.ID, "/photos"), "", nil)
	assert.Len(t, decode[[]types.PhotoView](t, rec), 1)

	rec = do(t, "DELETE", path("/posts/", p.Post.ID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, "DELETE", path("/posts/", p.Post.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice, decode[types.DeletePostResponse](t, rec).ProfileID)

	rec = do(t, "GET", path("/posts/", p.Post.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentsAndLikes(t *testing.T) {
	reset(t)

	_, aliceToken := signup(t, "alice")
	bob, bobToken := signup(t, "bob")

	p := post(t, aliceToken, "comment on me")

	rec := do(t, "POST", path("/posts/", p.Post.ID, "/comments"), bobToken, types.CreateComment{Text: "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[types.Comment](t, rec)
	assert.Equal(t, bob, comment.ProfileID)

	rec = do(t, "POST", path("/posts/", p.Post.ID, "/comments"), bobToken, types.CreateComment{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, "GET", path("/posts/", p.Post.ID, "/comments"), "", nil)
	assert.Len(t, decode[[]types.Comment](t, rec), 1)

	rec = do(t, "DELETE", path("/comments/", comment.ID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, "DELETE", path("/comments/", comment.ID), bobToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for i := 0; i < 2; i++ {
		rec = do(t, "PUT", path("/posts/", p.Post.ID, "/like"), bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = do(t, "GET", path("/posts/", p.Post.ID, "/likes"), "", nil)
	likes := decode[types.LikesResponse](t, rec)
	assert.Equal(t, int64(1), likes.NumLikes)
	require.Len(t, likes.Likes, 1)
	assert.Equal(t, bob, likes.Likes[0].ProfileID)

	rec = do(t, "DELETE", path("/posts/", p.Post.ID, "/like"), bobToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, "GET", path("/posts/", p.Post.ID), "", nil)
	assert.Equal(t, int64(0), decode[types.PostDetail](t, rec).NumLikes)
}

func TestSearchEndpoint(t *testing.T) {
	reset(t)

	_, token := signup(t, "beachbum")
	signup(t, "mountaineer")
	post(t, token, "Day at the BEACH")

	rec := do(t, "GET", "/search?q=beach", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	results := decode[types.SearchResults](t, rec)
	assert.Equal(t, "beach", results.Query)
	assert.Len(t, results.Posts, 1)
	require.Len(t, results.Profiles, 1)
	assert.Equal(t, "beachbum", results.Profiles[0].Username)

	rec = do(t, "GET", "/search?q=%20%20", "", nil)
	results = decode[types.SearchResults](t, rec)
	assert.Empty(t, results.Posts)
	assert.Empty(t, results.Profiles)
}

func TestDeleteProfileEndsSession(t *testing.T) {
	reset(t)

	alice, aliceToken := signup(t, "alice")
	bob, bobToken := signup(t, "bob")

	post(t, aliceToken, "gone soon")
	require.Equal(t, http.StatusOK, do(t, "PUT", path("/profiles/", alice, "/follow"), bobToken, nil).Code)

	rec := do(t, "DELETE", path("/profiles/", alice), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, "DELETE", path("/profiles/", alice), aliceToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, "GET", path("/profiles/", alice), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, "GET", path("/profiles/", bob, "/following"), "", nil)
	assert.Empty(t, decode[[]types.Profile](t, rec))

	caption := "ghost"
	rec = do(t, "POST", "/posts", aliceToken, types.CreatePost{Caption: &caption})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	reset(t)

	alice, token := signup(t, "alice")
	bio := "hi"

	rec := do(t, "PATCH", path("/profiles/", alice), token, types.UpdateProfile{BioText: &bio})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", decode[types.Profile](t, rec).BioText)

	rec = do(t, "DELETE", "/sessions", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, "PATCH", path("/profiles/", alice), token, types.UpdateProfile{BioText: &bio})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBadPaths(t *testing.T) {
	reset(t)

	assert.Equal(t, http.StatusBadRequest, do(t, "GET", "/posts/abc", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, "GET", "/posts/0", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, "GET", "/posts/42", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, "GET", "/profiles/42/feed", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, "GET", "/nope", "", nil).Code)
}

func TestOpenapiDocument(t *testing.T) {
	rec := do(t, "GET", "/openapi", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := rec.Body.String()
	for _, op := range []string{"get_post_feed", "create_profile_post", "search", "logout"} {
		assert.Contains(t, doc, `"`+op+`"`)
	}
}
