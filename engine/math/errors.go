package math

import "errors"

var (
	ErrSingularMatrix = errors.New("matrix is singular and has no inverse")
)
