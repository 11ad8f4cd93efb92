package config

import "errors"

var (
	ErrInvalid = errors.New("invalid config")
	ErrDecode  = errors.New("decode config")
)
