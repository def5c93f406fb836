package user

import (
	"context"
	"net/http"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/auth"
	coreuser "github.com/eventstaff/attendance/internal/core/user"
	"github.com/eventstaff/attendance/internal/transport"
)

type ServiceAPI interface {
	Register(ctx context.Context, actor *internal.Principal, dto RegisterDTO) (*coreuser.User, error)
	List(ctx context.Context) ([]*coreuser.User, error)
	Get(ctx context.Context, actor *internal.Principal, id int64) (*coreuser.User, error)
	Update(ctx context.Context, actor *internal.Principal, id int64, dto UpdateUserDTO) (*coreuser.User, error)
	Delete(ctx context.Context, actor *internal.Principal, id int64) error
}

// TokenIssuer signs tokens for a freshly registered account.
type TokenIssuer interface {
	IssueTokens(u *coreuser.User) (auth.AuthTokens, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Tokens  TokenIssuer
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, tokens TokenIssuer) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Tokens:      tokens,
	}
}

// Register handles POST /api/auth/register and signs the new user in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.Register(r.Context(), nil, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	tokens, err := h.Tokens.IssueTokens(u)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, auth.LoginResult{User: u, Tokens: tokens})
}

// Create handles POST /api/users (admin).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	principal, _ := internal.PrincipalFromContext(r.Context())
	u, err := h.Service.Register(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	principal, _ := internal.PrincipalFromContext(r.Context())
	u, err := h.Service.Get(r.Context(), principal, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateUserDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	principal, _ := internal.PrincipalFromContext(r.Context())
	u, err := h.Service.Update(r.Context(), principal, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	principal, _ := internal.PrincipalFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), principal, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
