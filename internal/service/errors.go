package service

import "errors"

var (
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileExists     = errors.New("profile already exists for this user")
	ErrInvalidCustomURL  = errors.New("invalid custom url")
	ErrCustomURLReserved = errors.New("custom url is reserved")
	ErrCustomURLTaken    = errors.New("custom url is already taken")

	ErrLinkNotFound     = errors.New("social link not found")
	ErrTooManyLinks     = errors.New("too many social links")
	ErrInvalidLinkOrder = errors.New("link order must list every link of the profile exactly once")
	ErrInvalidURL       = errors.New("invalid url")

	ErrTooManyTags = errors.New("too many tags")
	ErrTagTooLong  = errors.New("tag is too long")
	ErrInvalidTag  = errors.New("tag must not be empty")
)
