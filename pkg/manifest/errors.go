package manifest

import "errors"

var (
	ErrDecodeManifest   = errors.New("decode manifest")
	ErrUnknownStatement = errors.New("unknown statement")
	ErrUnknownExtend    = errors.New("unknown extend mode")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrInvalidDef       = errors.New("invalid def")
	ErrInvalidCall      = errors.New("invalid call expression")
	ErrNotExtended      = errors.New("type is not extended")
	ErrUnknownType      = errors.New("unknown type")
)
