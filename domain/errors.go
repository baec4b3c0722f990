package domain

import "errors"

var ErrDuplicateUsername = errors.New("username already taken")
