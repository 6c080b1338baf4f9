package main

import "errors"

var (
	ErrInitLogger    = errors.New("initialize logger")
	ErrReadConfig    = errors.New("read config file")
	ErrLoadManifest  = errors.New("load manifest")
	ErrApplyManifest = errors.New("apply manifest")
	ErrCall          = errors.New("call failed")
	ErrEncodeOutput  = errors.New("encode output")
)
