// Package fields implements the fixed-width fields records are built from.
package fields

import (
	"errors"
	"fmt"

	"github.com/wmjtyd/libstock/pkg/data/num"
)

type ErrorKind int

const (
	KindUnexpectedTradeSide ErrorKind = iota + 1
	KindUnimplementedExchange
	KindUnimplementedInfoType
	KindUnimplementedPeriod
	KindFloatOverflow
	KindDataEndedTooEarly
	KindNum
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnexpectedTradeSide:
		return "UnexpectedTradeSide"
	case KindUnimplementedExchange:
		return "UnimplementedExchange"
	case KindUnimplementedInfoType:
		return "UnimplementedInfoType"
	case KindUnimplementedPeriod:
		return "UnimplementedPeriod"
	case KindFloatOverflow:
		return "FloatOverflow"
	case KindDataEndedTooEarly:
		return "DataEndedTooEarly"
	case KindNum:
		return "Num"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a domain error raised by a field. Value is the name or code
// that could not be mapped, when there is one.
type Error struct {
	Kind  ErrorKind
	Value any
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnexpectedTradeSide:
		return fmt.Sprintf("unexpected trade side ID: %v", e.Value)
	case KindUnimplementedExchange:
		return fmt.Sprintf("this exchange has not been implemented: %v", e.Value)
	case KindUnimplementedInfoType:
		return fmt.Sprintf("this info type has not been implemented: %v", e.Value)
	case KindUnimplementedPeriod:
		return fmt.Sprintf("this period has not been implemented: %v", e.Value)
	case KindFloatOverflow:
		return fmt.Sprintf("convert between decimal and %v overflowed", e.Value)
	case KindDataEndedTooEarly:
		return "data ended too early (missing \\0 in the end)"
	case KindNum:
		return fmt.Sprintf("number encode/decode error: %v", e.Err)
	default:
		return fmt.Sprintf("field error %v: %v", e.Kind, e.Value)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work
// with errors.Is regardless of Value.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Value == nil && t.Err == nil
}

var (
	ErrUnexpectedTradeSide   = &Error{Kind: KindUnexpectedTradeSide}
	ErrUnimplementedExchange = &Error{Kind: KindUnimplementedExchange}
	ErrUnimplementedInfoType = &Error{Kind: KindUnimplementedInfoType}
	ErrUnimplementedPeriod   = &Error{Kind: KindUnimplementedPeriod}
	ErrFloatOverflow         = &Error{Kind: KindFloatOverflow}
	ErrDataEndedTooEarly     = &Error{Kind: KindDataEndedTooEarly}
	ErrNum                   = &Error{Kind: KindNum}
)

func numError(err error) error {
	if errors.Is(err, num.ErrFloatOverflow) {
		return &Error{Kind: KindFloatOverflow, Value: "float64", Err: err}
	}
	return &Error{Kind: KindNum, Err: err}
}
