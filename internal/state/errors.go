package state

import (
	"fmt"
	"os"
)

// LocalStateNotFoundError is returned when a state file has not been
// written yet, usually because no lighthouse was set up from this directory.
type LocalStateNotFoundError struct {
	Name string
	Path string
}

func (e *LocalStateNotFoundError) Error() string {
	return fmt.Sprintf("local state %s not found at %s (run setup lighthouse first)", e.Name, e.Path)
}

// Is makes the error match os.ErrNotExist.
func (e *LocalStateNotFoundError) Is(target error) bool {
	return target == os.ErrNotExist
}
