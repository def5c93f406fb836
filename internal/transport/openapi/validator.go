// Package openapi checks incoming requests against the published API
// document before they reach a handler.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

type Validator struct {
	router routers.Router
	base   *transport.BaseHandler
}

// Load reads and validates the document at path.
func Load(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// NewValidator matches on paths only; the document's server list is ignored
// so the same file works behind any host.
func NewValidator(doc *openapi3.T, base *transport.BaseHandler) (*Validator, error) {
	doc.Servers = nil
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &Validator{router: router, base: base}, nil
}

// Middleware rejects requests that do not match their documented operation
// with a 400. Undocumented routes pass through untouched. Security schemes
// are left to the authentication middleware.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         false,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.base.WriteAppError(w, validationError(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validationError(err error) *internal.AppError {
	appErr := internal.NewValidationError("request does not match the API schema", internal.ErrCodeValidationFailed)

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		field := "body"
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}
		message := reqErr.Reason
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			message = schemaErr.Reason
			if ptr := schemaErr.JSONPointer(); len(ptr) > 0 {
				field = ptr[0]
			}
		}
		if message == "" {
			message = reqErr.Error()
		}
		return appErr.WithDetails(internal.ValidationErrors{
			Errors: []internal.ValidationError{{Field: field, Message: message, Code: string(internal.ErrCodeValidationFailed)}},
		})
	}
	return appErr.WithCause(err)
}
