package uapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"minigram/types"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testResponder struct{}

func (testResponder) New(msg string, ctx map[string]string) any {
	return types.ApiError{Message: msg, Context: ctx}
}

func setupTestState() {
	SetupState(UAPIState{
		Logger: zap.NewNop(),
		Constants: &UAPIConstants{
			ResourceNotFound:    "not found",
			BadRequest:          "bad request",
			Forbidden:           "forbidden",
			Unauthorized:        "unauthorized",
			Conflict:            "conflict",
			InternalServerError: "internal",
			MethodNotAllowed:    "method",
			BodyRequired:        "body",
		},
		DefaultResponder: testResponder{},
	})
}

func TestErrorResponse(t *testing.T) {
	setupTestState()

	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: post 3", types.ErrNotFound), http.StatusNotFound},
		{types.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: profile 9 does not exist", types.ErrConstraintViolation), http.StatusConflict},
		{types.Invalid("nope"), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, ErrorResponse(tt.err).Status, tt.err.Error())
	}

	resp := ErrorResponse(&types.ValidationError{Message: "bad caption", Fields: map[string]string{"Caption": "required"}})
	apiErr, ok := resp.Json.(types.ApiError)
	require.True(t, ok)
	assert.Equal(t, "bad caption", apiErr.Message)
	assert.Equal(t, "required", apiErr.Context["Caption"])
}

func TestDefaultResponse(t *testing.T) {
	setupTestState()

	assert.Equal(t, http.StatusNoContent, DefaultResponse(http.StatusOK).Status)
	assert.Equal(t, "conflict", DefaultResponse(http.StatusConflict).Data)
	assert.Equal(t, "internal", DefaultResponse(http.StatusTeapot).Data)
}

func TestMarshalReq(t *testing.T) {
	setupTestState()

	var dst types.CreateComment

	_, ok := MarshalReq(httptest.NewRequest("POST", "/", strings.NewReader(`{"text":"hi"}`)), &dst)
	require.True(t, ok)
	assert.Equal(t, "hi", dst.Text)

	resp, ok := MarshalReq(httptest.NewRequest("POST", "/", nil), &dst)
	assert.False(t, ok)
	assert.Equal(t, "body", resp.Data)

	resp, ok = MarshalReq(httptest.NewRequest("POST", "/", strings.NewReader(`{`)), &dst)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestIDParam(t *testing.T) {
	setupTestState()

	r := chi.NewRouter()
	var got uint
	var status int

	r.Get("/things/{id}", func(w http.ResponseWriter, req *http.Request) {
		id, resp, ok := IDParam(req, "id")
		got, status = id, resp.Status
		if ok {
			status = http.StatusOK
		}
	})

	for path, want := range map[string]int{
		"/things/12":  http.StatusOK,
		"/things/0":   http.StatusBadRequest,
		"/things/-1":  http.StatusBadRequest,
		"/things/abc": http.StatusBadRequest,
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
		assert.Equal(t, want, status, path)
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/things/12", nil))
	assert.Equal(t, uint(12), got)
}

func TestHandleReleasesCancelledRequests(t *testing.T) {
	setupTestState()
	State.Authorize = func(r Route, req *http.Request) (AuthData, HttpResponse, bool) {
		return AuthData{}, HttpResponse{}, true
	}

	release := make(chan struct{})
	var started sync.WaitGroup

	route := Route{
		OpId: "slow",
		Handler: func(d RouteData, r *http.Request) HttpResponse {
			started.Done()
			<-release
			return HttpResponse{Status: http.StatusOK}
		},
	}

	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest("GET", "/slow", nil).WithContext(ctx)

		started.Add(1)
		returned := make(chan struct{})
		go func() {
			handle(route, httptest.NewRecorder(), req)
			close(returned)
		}()

		started.Wait()
		cancel()
		<-returned
	}

	close(release)

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond, "handler goroutines stayed blocked after their requests were cancelled")
}
