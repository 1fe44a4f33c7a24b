// Defines a standard way to define routes
package uapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	docs "minigram/doclib"
	"minigram/types"

	"github.com/go-chi/chi/v5"
	"github.com/infinitybotlist/eureka/jsonimpl"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type UAPIConstants struct {
	// String returned when the resource could not be found
	ResourceNotFound string

	// String returned when the request is invalid
	BadRequest string

	// String returned when the user is not allowed to act on the resource (403)
	Forbidden string

	// String returned when no valid session was sent (401)
	Unauthorized string

	// String returned when the write conflicts with existing data (409)
	Conflict string

	// String returned when the server encounters an internal error
	InternalServerError string

	// String returned when the method is not allowed
	MethodNotAllowed string

	// String returned when the body is required
	BodyRequired string
}

type UAPIDefaultResponder interface {
	// Returns the msg with the response type
	New(msg string, ctx map[string]string) any
}

// This struct contains initialization data while loading UAPI (such as the current tag etc.)
type UAPIInitData struct {
	// The current tag being loaded
	Tag string
}

// Setup struct
type UAPIState struct {
	Logger      *zap.Logger
	Authorize   func(r Route, req *http.Request) (AuthData, HttpResponse, bool)
	AuthTypeMap map[string]string // E.g. session => Session

	Context context.Context

	// Api constants
	Constants *UAPIConstants

	// Used for 404 errors, validation errors, default statuses etc.
	DefaultResponder UAPIDefaultResponder

	// Used to store init data
	InitData UAPIInitData
}

func (s *UAPIState) SetCurrentTag(tag string) {
	s.InitData.Tag = tag
}

func SetupState(s UAPIState) {
	if s.Constants == nil {
		panic("Constants is nil")
	}

	State = &s
}

var (
	// Stores the UAPI state
	State *UAPIState
)

// A API Router, not to be confused with Router which routes the actual routes
type APIRouter interface {
	Routes(r *chi.Mux)
	Tag() (string, string)
}

type Method int

const (
	GET Method = iota
	POST
	PATCH
	PUT
	DELETE
)

// Returns the method as a string
func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PATCH:
		return "PATCH"
	case PUT:
		return "PUT"
	case DELETE:
		return "DELETE"
	}

	panic("Invalid method")
}

// AuthType describes an accepted credential. When URLVar is set the
// authenticated id must equal that numeric path parameter.
type AuthType struct {
	URLVar string
	Type   string
}

type AuthData struct {
	TargetType string `json:"target_type"`
	ID         string `json:"id"`
	Authorized bool   `json:"authorized"`
}

// ProfileID returns the authenticated profile, if any.
func (a AuthData) ProfileID() (uint, bool) {
	if !a.Authorized || a.TargetType != "profile" {
		return 0, false
	}

	id, err := strconv.ParseUint(a.ID, 10, 64)
	if err != nil {
		return 0, false
	}

	return uint(id), true
}

// Represents a route on the API
type Route struct {
	Method       Method
	Pattern      string
	OpId         string
	Handler      func(d RouteData, r *http.Request) HttpResponse
	Docs         func() *docs.Doc
	Auth         []AuthType
	AuthOptional bool
}

type RouteData struct {
	Context context.Context
	Auth    AuthData
}

type Router interface {
	Get(pattern string, h http.HandlerFunc)
	Post(pattern string, h http.HandlerFunc)
	Patch(pattern string, h http.HandlerFunc)
	Put(pattern string, h http.HandlerFunc)
	Delete(pattern string, h http.HandlerFunc)
}

func (r Route) String() string {
	return r.Method.String() + " " + r.Pattern + " (" + r.OpId + ")"
}

func (r Route) Route(ro Router) {
	if r.OpId == "" {
		panic("OpId is empty: " + r.String())
	}

	if r.Handler == nil {
		panic("Handler is nil: " + r.String())
	}

	if r.Docs == nil {
		panic("Docs is nil: " + r.String())
	}

	if r.Pattern == "" {
		panic("Pattern is empty: " + r.String())
	}

	if State.InitData.Tag == "" {
		panic("CurrentTag is empty: " + r.String())
	}

	docsObj := r.Docs()

	docsObj.Pattern = r.Pattern
	docsObj.OpId = r.OpId
	docsObj.Method = r.Method.String()
	docsObj.Tags = []string{State.InitData.Tag}
	docsObj.AuthType = []string{}

	for _, auth := range r.Auth {
		t, ok := State.AuthTypeMap[auth.Type]

		if !ok {
			panic("Invalid auth type: " + auth.Type)
		}

		docsObj.AuthType = append(docsObj.AuthType, t)
	}

	// Path params declared in docs must match the pattern, in order
	pathParams := []string{}
	patternParams := []string{}

	for _, param := range docsObj.Params {
		if param.In == "" || param.Name == "" || param.Schema == nil {
			panic("Param is missing required fields: " + r.String())
		}

		if param.In == "path" {
			pathParams = append(pathParams, param.Name)
		}
	}

	for _, seg := range strings.Split(r.Pattern, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			patternParams = append(patternParams, seg[1:len(seg)-1])
		} else if strings.ContainsAny(seg, "{}") {
			panic("{ and } in pattern but does not start with it " + r.String())
		}
	}

	if !slices.Equal(patternParams, pathParams) {
		panic("Mismatched params in pattern and docs: " + r.String())
	}

	docs.Route(docsObj)

	handler := func(w http.ResponseWriter, req *http.Request) {
		handle(r, w, req)
	}

	switch r.Method {
	case GET:
		ro.Get(r.Pattern, handler)
	case POST:
		ro.Post(r.Pattern, handler)
	case PATCH:
		ro.Patch(r.Pattern, handler)
	case PUT:
		ro.Put(r.Pattern, handler)
	case DELETE:
		ro.Delete(r.Pattern, handler)
	default:
		panic("Unknown method for route: " + r.String())
	}
}

func respond(ctx context.Context, w http.ResponseWriter, data chan HttpResponse) {
	select {
	case <-ctx.Done():
		return
	case msg, ok := <-data:
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(State.Constants.InternalServerError))
			return
		}

		for k, v := range msg.Headers {
			w.Header().Set(k, v)
		}

		if msg.Json != nil {
			bytes, err := jsonimpl.Marshal(msg.Json)

			if err != nil {
				State.Logger.Error("[uapi.respond] Failed to marshal JSON response", zap.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(State.Constants.InternalServerError))
				return
			}

			msg.Bytes = bytes
		}

		if msg.Status == 0 {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(msg.Status)
		}

		if len(msg.Bytes) > 0 {
			w.Write(msg.Bytes)
		}

		w.Write([]byte(msg.Data))
	}
}

type HttpResponse struct {
	// Data is the data to be sent to the client
	Data string
	// Optional, can be used in place of Data
	Bytes []byte
	// Json body to be sent to the client
	Json any
	// Headers to set
	Headers map[string]string
	// Status is the HTTP status code to send
	Status int
}

// Creates a default HTTP response based on the status code
// 200 is treated as 204 No Content
func DefaultResponse(statusCode int) HttpResponse {
	switch statusCode {
	case http.StatusForbidden:
		return HttpResponse{
			Status: statusCode,
			Data:   State.Constants.Forbidden,
		}
	case http.StatusUnauthorized:
		return HttpResponse{
			Status: statusCode,
			Data:   State.Constants.Unauthorized,
		}
	case http.StatusNotFound:
		return HttpResponse{
			Status: statusCode,
			Data:   State.Constants.ResourceNotFound,
		}
	case http.StatusBadRequest:
		return HttpResponse{
			Status: statusCode,
			Data:   State.Constants.BadRequest,
		}
	case http.StatusConflict:
		return HttpResponse{
			Status: statusCode,
			Data:   State.Constants.Conflict,
		}
	case http.StatusMethodNotAllowed:
		return HttpResponse{
			Status: statusCode,
			Data:   State.Constants.MethodNotAllowed,
		}
	case http.StatusNoContent, http.StatusOK:
		return HttpResponse{
			Status: http.StatusNoContent,
		}
	}

	return HttpResponse{
		Status: statusCode,
		Data:   State.Constants.InternalServerError,
	}
}

// ErrorResponse turns an error from the service layer into a response.
// Unknown errors are logged and hidden behind a 500.
func ErrorResponse(err error) HttpResponse {
	var verr *types.ValidationError

	switch {
	case errors.As(err, &verr):
		return HttpResponse{
			Status: http.StatusBadRequest,
			Json:   State.DefaultResponder.New(verr.Message, verr.Fields),
		}
	case errors.Is(err, types.ErrNotFound):
		return DefaultResponse(http.StatusNotFound)
	case errors.Is(err, types.ErrForbidden):
		return DefaultResponse(http.StatusForbidden)
	case errors.Is(err, types.ErrConstraintViolation):
		return HttpResponse{
			Status: http.StatusConflict,
			Json:   State.DefaultResponder.New(err.Error(), nil),
		}
	case errors.Is(err, types.ErrValidation):
		return HttpResponse{
			Status: http.StatusBadRequest,
			Json:   State.DefaultResponder.New(err.Error(), nil),
		}
	}

	State.Logger.Error("[uapi.ErrorResponse] Unhandled error", zap.Error(err))
	return DefaultResponse(http.StatusInternalServerError)
}

func handle(r Route, w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	// Buffered so the handler can still deliver after respond gave up on a cancelled request
	resp := make(chan HttpResponse, 1)

	go func() {
		defer func() {
			err := recover()

			if err != nil {
				State.Logger.Error("[uapi/handle] Request handler panic'd", zap.String("operationId", r.OpId), zap.String("method", req.Method), zap.String("endpointPattern", r.Pattern), zap.String("path", req.URL.Path), zap.Any("error", err))
				resp <- HttpResponse{
					Status: http.StatusInternalServerError,
					Data:   State.Constants.InternalServerError,
				}
			}
		}()

		authData, httpResp, ok := State.Authorize(r, req)

		if !ok {
			resp <- httpResp
			return
		}

		resp <- r.Handler(RouteData{Context: ctx, Auth: authData}, req)
	}()

	respond(ctx, w, resp)
}

// MarshalReq decodes the JSON body of r into dst.
func MarshalReq(r *http.Request, dst any) (resp HttpResponse, ok bool) {
	defer r.Body.Close()

	bodyBytes, err := io.ReadAll(r.Body)

	if err != nil {
		State.Logger.Error("[uapi/MarshalReq] Failed to read body", zap.Error(err), zap.Int("size", len(bodyBytes)))
		return DefaultResponse(http.StatusInternalServerError), false
	}

	if len(bodyBytes) == 0 {
		return HttpResponse{
			Status: http.StatusBadRequest,
			Data:   State.Constants.BodyRequired,
		}, false
	}

	err = jsonimpl.Unmarshal(bodyBytes, dst)

	if err != nil {
		return HttpResponse{
			Status: http.StatusBadRequest,
			Json: State.DefaultResponder.New("Invalid JSON", map[string]string{
				"error": err.Error(),
			}),
		}, false
	}

	return HttpResponse{}, true
}

// IDParam parses a numeric path parameter.
func IDParam(r *http.Request, name string) (uint, HttpResponse, bool) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, HttpResponse{
			Status: http.StatusBadRequest,
			Json: State.DefaultResponder.New("Invalid "+name, map[string]string{
				name: "must be a positive integer",
			}),
		}, false
	}

	return uint(id), HttpResponse{}, true
}
