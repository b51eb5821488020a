package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUserNotExist       = errors.New("user doesn't exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")

	ErrInvalidCount       = errors.New("invalid user count")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCollectionNotFound = errors.New("post collection not found")
	ErrForbidden          = errors.New("forbidden")

	ErrCannotFollowSelf = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already being followed")
	ErrNotFollowing     = errors.New("not being followed")

	ErrInvalidPost      = errors.New("invalid post")
	ErrAlreadyCollected = errors.New("post already collected")
	ErrEmptyComment     = errors.New("comment content is required")
	ErrImageUpload      = errors.New("image upload failed")
	ErrImageDelete      = errors.New("image delete failed")

	ErrEmptyPrompt = errors.New("prompt is required")
	ErrRelay       = errors.New("generative model request failed")
)
