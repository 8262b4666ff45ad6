package gridgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/gridgo/fileman"
)

var (
	// ErrStoreClosed is returned when a closed store is used, including a
	// second Close.
	ErrStoreClosed = errors.New("gridgo: store closed")
)

// ErrUnknownEngine indicates that no engine with the requested name is
// registered. Engines register through their package init, so a missing
// engine usually means a missing blank import.
type ErrUnknownEngine struct {
	Name string
}

func (e *ErrUnknownEngine) Error() string {
	return fmt.Sprintf("gridgo: unknown engine %q", e.Name)
}

// ErrVariableNotFound indicates that the dataset has no variable with
// the requested name.
type ErrVariableNotFound struct {
	Name string
	Path string
}

func (e *ErrVariableNotFound) Error() string {
	return fmt.Sprintf("gridgo: variable %q not found in %s", e.Name, e.Path)
}

// translateError maps inner errors onto the package's sentinels. Engine
// errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, fileman.ErrManagerClosed) {
		return fmt.Errorf("%w: %w", ErrStoreClosed, err)
	}

	return err
}
