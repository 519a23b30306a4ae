package chat

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrStoreUnavailable = errors.New("conversation store unavailable")
	ErrGeneration       = errors.New("generation failed")
	ErrEmptyReply       = fmt.Errorf("%w: empty reply", ErrGeneration)
	ErrJobNotFound      = errors.New("job not found")
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
