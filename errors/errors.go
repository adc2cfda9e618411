package errors

import "fmt"

var (
	ErrAlreadyExists      = fmt.Errorf("username already registered")
	ErrNotFound           = fmt.Errorf("user not found")
	ErrSelfReference      = fmt.Errorf("cannot add yourself as a contact")
	ErrDuplicateContact   = fmt.Errorf("contact already in list")
	ErrUnknownParticipant = fmt.Errorf("sender or receiver is not registered")
	ErrCorruptData        = fmt.Errorf("snapshot data is corrupt")
	ErrPersistenceFailure = fmt.Errorf("failed to persist snapshot")
	ErrContention         = fmt.Errorf("could not acquire store lock")
	ErrInvalidUsername    = fmt.Errorf("invalid username")
	ErrUnsupportedImage   = fmt.Errorf("payload is not an image")
	ErrUnknownEvent       = fmt.Errorf("unknown event kind")
	ErrEmptySearch        = fmt.Errorf("search query has no terms")
)
