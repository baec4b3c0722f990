package user

import (
	"context"
	"mutsamarket/pkg/httperror"
	"mutsamarket/pkg/validation"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var dummyPasswordHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("market-unknown-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type TokenIssuer interface {
	Issue(username string) (string, time.Time, error)
}

type LoginHandler struct {
	directory *Directory
	tokens    TokenIssuer
}

func NewLoginHandler(directory *Directory, tokens TokenIssuer) *LoginHandler {
	return &LoginHandler{
		directory: directory,
		tokens:    tokens,
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *LoginHandler) Handle(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := validation.Struct("user.login", req); err != nil {
		return nil, err
	}

	u, found, err := h.directory.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, httperror.InternalServerError("user.login.failed", "Failed to load user", err)
	}

	// Unknown users still pay for a bcrypt comparison so timing does not reveal them.
	hash := []byte(u.PasswordHash)
	if !found {
		hash = dummyPasswordHash()
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil || !found {
		zap.L().Warn("Login rejected", zap.String("username", req.Username))
		return nil, httperror.Unauthorized("user.login.invalid_credentials", "Invalid username or password", nil)
	}

	token, expiresAt, err := h.tokens.Issue(u.Username)
	if err != nil {
		return nil, httperror.InternalServerError("user.login.token_failed", "Failed to issue token", err)
	}

	return &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}
