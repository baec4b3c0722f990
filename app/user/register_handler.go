package user

import (
	"context"
	"errors"
	"mutsamarket/domain"
	"mutsamarket/pkg/httperror"
	"mutsamarket/pkg/validation"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type RegisterHandler struct {
	repository Repository
}

func NewRegisterHandler(repository Repository) *RegisterHandler {
	return &RegisterHandler{
		repository: repository,
	}
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordCheck" validate:"required,eqfield=Password"`
}

type RegisterResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *RegisterHandler) Handle(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if err := validation.Struct("user.register", req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, httperror.InternalServerError("user.register.hash_failed", "Failed to hash password", nil)
	}

	u, err := h.repository.CreateUser(ctx, req.Username, string(hash))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, httperror.Conflict("user.register.duplicate", "Username is already taken", nil)
		}
		return nil, httperror.InternalServerError("user.register.failed", "Failed to create user", err)
	}

	return &RegisterResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}, nil
}
