package prompts

import "errors"

// Sentinel errors returned (wrapped) by LoadPromptDefinitions.
var (
	ErrDirectoryNotFound     = errors.New("prompt directory does not exist or is not a directory")
	ErrInvalidNameLength     = errors.New("generated name must be 1-64 characters")
	ErrInvalidNameCharacters = errors.New("invalid characters in generated name")
	ErrDuplicateName         = errors.New("duplicate generated name")
)
