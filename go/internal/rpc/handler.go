package rpc

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/recruit/go/internal/apperr"
)

// Resolver maps a bearer token to the calling athlete.
type Resolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, token string) (uuid.UUID, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	return f(ctx, token)
}

// Empty is the request body of procedures that take no arguments.
type Empty struct{}

// Method is one operation. caller is already authenticated.
type Method[Req, Res any] func(ctx context.Context, caller uuid.UUID, req *Req) (Res, error)

// Service groups the procedures of one connect service under
// /<package>.<Service>/.
type Service struct {
	name     string
	mux      *http.ServeMux
	resolver Resolver
	opts     []connect.HandlerOption
}

func NewService(name string, resolver Resolver, opts ...connect.HandlerOption) *Service {
	return &Service{
		name:     name,
		mux:      http.NewServeMux(),
		resolver: resolver,
		opts:     append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...),
	}
}

// Name is the fully qualified service name, e.g. recruit.v1.RosterService.
func (s *Service) Name() string {
	return s.name
}

// Handler returns the mount path and handler, in the shape generated connect
// code uses so it drops into mux.Handle.
func (s *Service) Handler() (string, http.Handler) {
	return "/" + s.name + "/", s.mux
}

// Handle registers method under the service. Authentication and operation
// failures are both reported in the envelope with HTTP 200.
func Handle[Req, Res any](s *Service, method string, fn Method[Req, Res]) {
	procedure := "/" + s.name + "/" + method
	s.mux.Handle(procedure, connect.NewUnaryHandler(
		procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[apperr.Result[Res]], error) {
			caller, err := s.resolver.Resolve(ctx, BearerToken(req.Header()))
			if err != nil {
				result := apperr.Fail[Res](err)
				return connect.NewResponse(&result), nil
			}

			data, err := fn(ctx, caller, req.Msg)
			if err != nil {
				logFailure(procedure, caller, err)
			}
			result := apperr.ResultOf(data, err)
			return connect.NewResponse(&result), nil
		},
		s.opts...,
	))
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(h http.Header) string {
	v := strings.TrimSpace(h.Get("Authorization"))
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

// ParseID parses a required id field.
func ParseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperr.Validation(fmt.Sprintf("%s must be a valid id", field))
	}
	return id, nil
}

func logFailure(procedure string, caller uuid.UUID, err error) {
	e := apperr.From(err)
	event := log.Info()
	if e.Code == apperr.CodeStorage {
		event = log.Error()
	}
	event.
		Err(err).
		Str("procedure", procedure).
		Str("caller_id", caller.String()).
		Str("code", string(e.Code)).
		Msg("procedure failed")
}
