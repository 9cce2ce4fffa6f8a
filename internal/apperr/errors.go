// Package apperr defines the error kinds surfaced by every pixelforge
// operation. Each error carries a stable kind tag plus a human-readable
// message; callers branch on the kind with the Is* helpers or KindOf.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the stable tag reported to clients.
type Kind string

const (
	KindFileRead          Kind = "FileRead"
	KindImageDecode       Kind = "ImageDecode"
	KindUnsupportedFormat Kind = "UnsupportedFormat"
	KindSaveFailed        Kind = "SaveFailed"
	KindModelNotFound     Kind = "ModelNotFound"
	KindInferenceFailed   Kind = "InferenceFailed"
	KindDownloadFailed    Kind = "DownloadFailed"
	KindGeneral           Kind = "General"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindFileRead,
	KindImageDecode,
	KindUnsupportedFormat,
	KindSaveFailed,
	KindModelNotFound,
	KindInferenceFailed,
	KindDownloadFailed,
	KindGeneral,
}

// Error is the concrete error type for all kinds.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindFileRead:
		return "failed to read file: " + e.Msg
	case KindImageDecode:
		return "failed to decode image: " + e.Msg
	case KindUnsupportedFormat:
		return "unsupported format: " + e.Msg
	case KindSaveFailed:
		return "save failed: " + e.Msg
	case KindModelNotFound:
		return "model not found: " + e.Msg
	case KindInferenceFailed:
		return "inference failed: " + e.Msg
	case KindDownloadFailed:
		return "download failed: " + e.Msg
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// MarshalJSON renders {"kind": ..., "message": ...}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind   `json:"kind"`
		Message string `json:"message"`
	}{Kind: e.Kind, Message: e.Error()})
}

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to err. The cause's text becomes the message.
// Wrapping an *Error keeps its original kind.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}

// KindOf returns the kind of err, or KindGeneral for foreign errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindGeneral
}

func ModelNotFound(format string, args ...any) error {
	return New(KindModelNotFound, format, args...)
}

func InferenceFailed(format string, args ...any) error {
	return New(KindInferenceFailed, format, args...)
}

func DownloadFailed(format string, args ...any) error {
	return New(KindDownloadFailed, format, args...)
}

func General(format string, args ...any) error {
	return New(KindGeneral, format, args...)
}

func is(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// IsModelNotFound reports an unknown or not-yet-downloaded model.
func IsModelNotFound(err error) bool { return is(err, KindModelNotFound) }

// IsInferenceFailed reports engine construction or execution failure.
func IsInferenceFailed(err error) bool { return is(err, KindInferenceFailed) }

// IsDownloadFailed reports transport errors, bad status or checksum mismatch.
func IsDownloadFailed(err error) bool { return is(err, KindDownloadFailed) }

func IsImageDecode(err error) bool { return is(err, KindImageDecode) }

func IsFileRead(err error) bool { return is(err, KindFileRead) }

func IsSaveFailed(err error) bool { return is(err, KindSaveFailed) }

func IsUnsupportedFormat(err error) bool { return is(err, KindUnsupportedFormat) }

func IsGeneral(err error) bool { return is(err, KindGeneral) }
