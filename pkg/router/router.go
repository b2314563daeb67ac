package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler and may extend the request
// context, typically with the authenticated user id.
type MiddlewareFunc func(ctx context.Context, r *http.Request) (context.Context, error)

// Router registers typed handlers on a ServeMux. The base context carries
// everything handlers reach through xcontext: configs, logger, database,
// snowflake node.
type Router struct {
	mux     *http.ServeMux
	base    context.Context
	befores []MiddlewareFunc
}

func New(ctx context.Context) *Router {
	return &Router{mux: http.NewServeMux(), base: ctx}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

// Branch returns a router sharing the mux but with its own middleware
// chain, copied from the current one.
func (r *Router) Branch() *Router {
	befores := make([]MiddlewareFunc, len(r.befores))
	copy(befores, r.befores)

	return &Router{mux: r.mux, base: r.base, befores: befores}
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}

func wrapHandler[Request, Response any](
	router *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeResponse(router.base, w, newErrorResponse(
				errorx.New(errorx.BadRequest, "Method not allowed")))
			return
		}

		ctx := router.base
		for _, middleware := range router.befores {
			next, err := middleware(ctx, r)
			if err != nil {
				writeResponse(ctx, w, newErrorResponse(err))
				return
			}

			ctx = next
		}

		var req Request
		if err := bindRequest(r, method, &req); err != nil {
			writeResponse(ctx, w, newErrorResponse(
				errorx.New(errorx.BadRequest, "Cannot bind the request")))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			writeResponse(ctx, w, newErrorResponse(err))
			return
		}

		writeResponse(ctx, w, newResponse(resp))
	}
}

// bindRequest fills the request struct from the json body of a POST or the
// query string of a GET. Query values are decoded through mapstructure
// using the same json tags, so one model serves both shapes.
func bindRequest(r *http.Request, method string, req any) error {
	if method == http.MethodPost {
		defer r.Body.Close()
		return json.NewDecoder(r.Body).Decode(req)
	}

	values := map[string]any{}
	for key := range r.URL.Query() {
		values[key] = r.URL.Query().Get(key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           req,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}

func writeResponse(ctx context.Context, w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}
