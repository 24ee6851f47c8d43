package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidWidget marks a radar, hexradar or waveform section that does
	// not form a usable widget profile. It is always joined with ErrInvalidConfig.
	ErrInvalidWidget = errors.New("invalid widget section")
	// ErrLoadConfig wraps failures reading the config file or HORUS_* variables.
	ErrLoadConfig = errors.New("load config failed")
)
