package user

import (
	"context"
	"database/sql"
	"errors"
	"mutsamarket/domain"
	"mutsamarket/pkg/auth"
	"mutsamarket/pkg/httperror"

	"go.uber.org/zap"
)

// Directory looks up users by their unique username.
type Directory struct {
	repository Repository
}

func NewDirectory(repository Repository) *Directory {
	return &Directory{
		repository: repository,
	}
}

func (d *Directory) FindByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	u, err := d.repository.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}

	return u, true, nil
}

// Resolve maps an authenticated principal to its user record. A principal
// without a record is an internal error: authentication already vouched for it.
func (d *Directory) Resolve(ctx context.Context, principal auth.Principal) (domain.User, error) {
	u, found, err := d.FindByUsername(ctx, principal.Name())
	if err != nil {
		return domain.User{}, httperror.InternalServerError(
			"user.resolve.failed",
			"Failed to load the authenticated user",
			err,
		)
	}

	if !found {
		zap.L().Error("Authenticated principal has no user record", zap.String("username", principal.Name()))
		return domain.User{}, httperror.InternalServerError(
			"user.resolve.missing",
			"Authenticated user does not exist",
			nil,
		)
	}

	return u, nil
}
