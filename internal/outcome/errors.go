package outcome

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFolderUnreadable  = errors.New("folder unreadable")
	ErrNoFilesFound      = errors.New("no files found")
	ErrUnsupportedType   = errors.New("unsupported type")
	ErrDateUnresolved    = errors.New("unable to resolve date")
	ErrDestinationCreate = errors.New("destination create failed")
	ErrMoveFailed        = errors.New("move failed")
	ErrNoOutputRoot      = errors.New("output root not specified")
)

// Wrap builds an error message that carries the scope (file or folder path)
// and the operation that failed while tagging it with marker for later
// classification through KindOf. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, scope, operation, message string, err error) error {
	detail := buildDetail(scope, operation, message)
	if marker == nil {
		marker = ErrMoveFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf maps an error produced by the sorter to the outcome kind recorded in
// the run report. Unknown errors are reported as move failures since they can
// only come from the placement path.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindPlaced
	case errors.Is(err, ErrFolderUnreadable):
		return KindFolderUnreadable
	case errors.Is(err, ErrNoFilesFound):
		return KindNoFilesFound
	case errors.Is(err, ErrUnsupportedType):
		return KindUnsupportedType
	case errors.Is(err, ErrDateUnresolved):
		return KindDateUnresolved
	case errors.Is(err, ErrDestinationCreate):
		return KindDestinationCreateFailed
	default:
		return KindMoveFailed
	}
}

func buildDetail(scope, operation, message string) string {
	parts := make([]string, 0, 3)
	if scope = strings.TrimSpace(scope); scope != "" {
		parts = append(parts, scope)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "sort failure"
	}
	return strings.Join(parts, ": ")
}
