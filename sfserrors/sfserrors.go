// Package sfserrors defines the sentinel error kinds the SimpleFS engine
// distinguishes: a string-backed sentinel that supports errors.Is and can be
// wrapped with an additional message or an underlying cause.
package sfserrors

import "fmt"

// Kind is a sentinel error identifying one of the failure categories the
// engine can report. Kind implements error directly so it can be returned
// or compared with errors.Is without wrapping.
type Kind string

const (
	// BadArgs covers a bad handle, bad block index, out-of-range inode
	// number, or a missing buffer.
	BadArgs Kind = "bad arguments"
	// IoFailure covers a failed underlying read, write, or seek.
	IoFailure Kind = "I/O failure"
	// BadSuperblock covers a superblock that failed mount verification.
	BadSuperblock Kind = "bad superblock"
	// AlreadyMounted covers mounting or formatting a device that is
	// already mounted.
	AlreadyMounted Kind = "device already mounted"
	// NotMounted covers an operation attempted against an unmounted
	// FileSystem.
	NotMounted Kind = "file system not mounted"
	// NoSpace covers exhaustion of free inodes (create) or free data
	// blocks (write).
	NoSpace Kind = "no space left on device"
	// InvalidInode covers an operation targeting a slot with valid == 0.
	InvalidInode Kind = "invalid inode"
)

func (k Kind) Error() string {
	return string(k)
}

// WithMessage attaches additional context to a Kind without losing its
// identity: errors.Is(result, k) still holds.
func (k Kind) WithMessage(message string) error {
	return &wrappedError{kind: k, message: fmt.Sprintf("%s: %s", string(k), message)}
}

// Wrap attaches an underlying cause to a Kind. Both errors.Is(result, k) and
// errors.Is(result, cause) hold.
func (k Kind) Wrap(cause error) error {
	return &wrappedError{
		kind:    k,
		message: fmt.Sprintf("%s: %s", string(k), cause.Error()),
		cause:   cause,
	}
}

type wrappedError struct {
	kind    Kind
	message string
	cause   error
}

func (e *wrappedError) Error() string {
	return e.message
}

func (e *wrappedError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.kind
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}
