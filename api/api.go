package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"minigram/constants"
	docs "minigram/doclib"
	"minigram/state"
	"minigram/types"
	"minigram/uapi"

	"go.uber.org/zap"
)

const (
	// TargetTypeProfile is the only kind of session this API hands out
	TargetTypeProfile = "profile"

	SessionHeader = "Authorization"
)

type DefaultResponder struct{}

func (d DefaultResponder) New(err string, ctx map[string]string) any {
	return types.ApiError{
		Message: err,
		Context: ctx,
	}
}

// SessionToken reads the token from the Authorization header, with or
// without a Bearer prefix.
func SessionToken(req *http.Request) string {
	token := strings.TrimSpace(req.Header.Get(SessionHeader))

	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}

	return token
}

// Authorizes a request
func Authorize(r uapi.Route, req *http.Request) (uapi.AuthData, uapi.HttpResponse, bool) {
	if len(r.Auth) == 0 {
		return uapi.AuthData{}, uapi.HttpResponse{}, true
	}

	token := SessionToken(req)

	if token == "" {
		if r.AuthOptional {
			return uapi.AuthData{}, uapi.HttpResponse{}, true
		}

		return uapi.AuthData{}, uapi.DefaultResponse(http.StatusUnauthorized), false
	}

	profileID, err := state.Sessions.Resolve(req.Context(), token)

	if errors.Is(err, types.ErrNotFound) {
		if r.AuthOptional {
			return uapi.AuthData{}, uapi.HttpResponse{}, true
		}

		return uapi.AuthData{}, uapi.HttpResponse{
			Status: http.StatusUnauthorized,
			Data:   constants.Unauthorized,
			Headers: map[string]string{
				"X-Session-Invalid": "true",
			},
		}, false
	}

	if err != nil {
		state.Logger.Error("[api.Authorize] Failed to resolve session", zap.Error(err))
		return uapi.AuthData{}, uapi.DefaultResponse(http.StatusInternalServerError), false
	}

	id := strconv.FormatUint(uint64(profileID), 10)

	for _, auth := range r.Auth {
		if auth.Type != TargetTypeProfile {
			continue
		}

		// Routes bound to a profile in the path only accept that profile's session
		if auth.URLVar != "" {
			target, resp, ok := uapi.IDParam(req, auth.URLVar)
			if !ok {
				return uapi.AuthData{}, resp, false
			}

			if target != profileID {
				return uapi.AuthData{}, uapi.DefaultResponse(http.StatusForbidden), false
			}
		}

		return uapi.AuthData{
			TargetType: TargetTypeProfile,
			ID:         id,
			Authorized: true,
		}, uapi.HttpResponse{}, true
	}

	return uapi.AuthData{}, uapi.DefaultResponse(http.StatusUnauthorized), false
}

func Setup() {
	docs.AddSecuritySchema("Session", SessionHeader, "Session token returned when creating a profile")

	uapi.SetupState(uapi.UAPIState{
		Logger:    state.Logger,
		Authorize: Authorize,
		AuthTypeMap: map[string]string{
			TargetTypeProfile: "Session",
		},
		Context: state.Context,
		Constants: &uapi.UAPIConstants{
			ResourceNotFound:    constants.ResourceNotFound,
			BadRequest:          constants.BadRequest,
			Forbidden:           constants.Forbidden,
			Unauthorized:        constants.Unauthorized,
			Conflict:            constants.Conflict,
			InternalServerError: constants.InternalServerError,
			MethodNotAllowed:    constants.MethodNotAllowed,
			BodyRequired:        constants.BodyRequired,
		},
		DefaultResponder: DefaultResponder{},
	})
}
