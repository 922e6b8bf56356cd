// Package packerr defines the error markers shared by the packing pipeline.
//
// Components wrap failures with Wrap so callers can classify them with
// errors.Is while still seeing the component, operation, and underlying cause
// in the message.
package packerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPath         = errors.New("invalid path")
	ErrUnsupportedAudio    = errors.New("unsupported audio")
	ErrSplit               = errors.New("channel split failed")
	ErrArchiveWrite        = errors.New("archive write failed")
	ErrSplitterUnavailable = errors.New("volume splitter unavailable")
	ErrVolumeSplit         = errors.New("volume split failed")
	ErrConfiguration       = errors.New("configuration error")
	ErrLocked              = errors.New("directory locked by another run")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. A nil marker falls
// back to ErrArchiveWrite since unclassified failures abort the run.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrArchiveWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether err should be surfaced as a run warning instead
// of aborting the run.
func Recoverable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrUnsupportedAudio), errors.Is(err, ErrSplit),
		errors.Is(err, ErrSplitterUnavailable), errors.Is(err, ErrVolumeSplit):
		return true
	default:
		return false
	}
}

// Hint returns a short operator-facing next step for a classified error.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrSplitterUnavailable):
		return "install zip (or 7z on Windows) and rerun, or raise the size limit"
	case errors.Is(err, ErrVolumeSplit):
		return "check the splitter output; the archive was left intact"
	case errors.Is(err, ErrUnsupportedAudio), errors.Is(err, ErrSplit):
		return "verify the WAV file; it was packed without splitting"
	case errors.Is(err, ErrArchiveWrite):
		return "check free space and permissions in the output directory"
	case errors.Is(err, ErrInvalidPath):
		return "pass an existing directory"
	case errors.Is(err, ErrLocked):
		return "wait for the other run to finish"
	case errors.Is(err, ErrConfiguration):
		return "run 'stemzipper config validate'"
	default:
		return "check logs for details"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{component, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "packing failure"
	}
	return strings.Join(parts, ": ")
}
