// Package social implements the profile graph on top of the entity store:
// relationship reads, content mutations with explicit cascades, and search.
package social

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"minigram/database"
	"minigram/media"
	"minigram/types"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/infinitybotlist/eureka/snippets"
	"go.uber.org/zap"
)

type Options struct {
	// Media stores uploaded files. Uploads are rejected when nil.
	Media     media.Store
	Validator *validator.Validate
	Logger    *zap.Logger
}

type Service struct {
	store     database.Store
	media     media.Store
	validator *validator.Validate
	logger    *zap.Logger
}

func New(store database.Store, opts Options) *Service {
	if opts.Validator == nil {
		opts.Validator = NewValidator()
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		store:     store,
		media:     opts.Media,
		validator: opts.Validator,
		logger:    opts.Logger,
	}
}

// NewValidator returns a validator with the custom tags used by request payloads.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterValidations(v)
	return v
}

func RegisterValidations(v *validator.Validate) {
	v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterValidation("nospaces", snippets.ValidatorNoSpaces)
	v.RegisterValidation("https", snippets.ValidatorIsHttps)
	v.RegisterValidation("httporhttps", snippets.ValidatorIsHttpOrHttps)
}

// fieldMessages reads the msg/amsg tags of a payload struct.
func fieldMessages(payload any) map[string]string {
	msgs := map[string]string{}

	t := reflect.TypeOf(payload)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return msgs
	}

	for _, f := range reflect.VisibleFields(t) {
		msgs[f.Name] = f.Tag.Get("msg")

		if arrayMsg := f.Tag.Get("amsg"); arrayMsg != "" {
			msgs[f.Name+"$arr"] = arrayMsg
		}
	}

	return msgs
}

// validate checks payload against its validate tags and turns failures into
// a *types.ValidationError keyed by struct field.
func (s *Service) validate(payload any) error {
	err := s.validator.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := fieldMessages(payload)
	fields := make(map[string]string, len(verrs))
	first := ""

	for i, fe := range verrs {
		lookup := fe.StructField()
		if strings.Contains(fe.Field(), "[") {
			lookup = strings.Split(fe.Field(), "[")[0] + "$arr"
		}

		msg := msgs[lookup]
		if msg != "" {
			msg += " [" + fe.Tag() + "]"
		} else {
			msg = fe.Error()
		}

		if i == 0 {
			first = msg
		}

		fields[fe.StructField()] = msg
	}

	return &types.ValidationError{Message: first, Fields: fields}
}

func (s *Service) requireProfile(ctx context.Context, store database.Store, id uint) (*types.Profile, error) {
	return store.Profiles().Get(ctx, id)
}

func (s *Service) requirePost(ctx context.Context, store database.Store, id uint) (*types.Post, error) {
	return store.Posts().Get(ctx, id)
}

// discard removes uploaded objects whose rows are gone or were never written.
func (s *Service) discard(keys []string) {
	if s.media == nil {
		return
	}

	for _, key := range keys {
		if err := s.media.Delete(context.Background(), key); err != nil {
			s.logger.Warn("Failed to remove uploaded file", zap.String("key", key), zap.Error(err))
		}
	}
}
