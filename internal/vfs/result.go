package vfs

import "errors"

// Validation failures. The messages are part of the public contract and are
// surfaced verbatim through Result.Error.
var (
	ErrNameInvalid         = errors.New("Name already exists or is invalid")
	ErrParentNotFound      = errors.New("Parent folder not found")
	ErrNotFound            = errors.New("Item not found")
	ErrFileNotFound        = errors.New("File not found")
	ErrDestinationNotFound = errors.New("Destination folder not found")
	ErrMoveIntoSelf        = errors.New("Cannot move a folder into itself or its descendants")
	ErrInvalidKind         = errors.New("Invalid item kind")
	ErrNothingToUndo       = errors.New("Nothing to undo")
	ErrUndoUnsupported     = errors.New("Unable to undo this operation")
	ErrClipboardEmpty      = errors.New("Clipboard is empty")
)

// Result is returned by every mutating operation instead of an error.
type Result struct {
	Success bool    `json:"success"`
	Error   *string `json:"error,omitempty"`
	Item    *Item   `json:"item,omitempty"`

	err error
}

// Err returns the underlying sentinel error, or nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	if r.Error != nil {
		return errors.New(*r.Error)
	}
	return errors.New("unknown error")
}

// Message returns the error text, or "" on success.
func (r Result) Message() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func success(item *Item) Result {
	return Result{Success: true, Item: item}
}

func failure(err error) Result {
	msg := err.Error()
	return Result{Success: false, Error: &msg, err: err}
}
