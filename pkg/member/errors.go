package member

import "errors"

var (
	ErrNoSuchMember   = errors.New("no such member")
	ErrNoBlock        = errors.New("no block given (yield)")
	ErrInvalidMember  = errors.New("invalid member definition")
	ErrInvalidBinding = errors.New("invalid binding")
)
