// Package apperr defines sentinel errors shared across den services.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// Captcha solving failures.
	ErrNoOperator   = errors.New("captcha: no operator found")
	ErrNoOperands   = errors.New("captcha: missing operands")
	ErrUnknownToken = errors.New("captcha: unknown token")
	ErrDivideByZero = errors.New("captcha: division by zero")

	// Platform client failures.
	ErrRateLimited   = errors.New("platform: rate limited")
	ErrCaptchaFailed = errors.New("platform: captcha verification failed")
	ErrNotConfigured = errors.New("platform: not configured")
)
