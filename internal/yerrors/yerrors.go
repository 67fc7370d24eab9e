// Package yerrors defines the closed error taxonomy shared by every
// ledger, wallet, mining and RPC component of the node.
package yerrors

import "fmt"

// Kind is one of the node's fixed error categories. Every error that
// crosses a package boundary carries one.
type Kind int

const (
	Other Kind = iota
	InvalidPassword
	InvalidKey
	InvalidLength
	InvalidValue
	UnknownValue
	NotEnoughFunds
	NotFound
	AlreadyFound
	InvalidLevel
	ParsingFailure
	InvalidDifficulty
	InvalidCoinKind
	InvalidCoin
	InvalidRPCMethod
	InvalidMessagePrefix
	InvalidMessageKind
	InvalidMessageStatus
	InvalidRequest
	InvalidResponse
	InvalidIP
	MaxConnectionsReached
	FailedConnection
	NotConnected
	IO
	Store
	JSON
	Crypto
)

var names = map[Kind]string{
	Other:                 "Other",
	InvalidPassword:       "InvalidPassword",
	InvalidKey:            "InvalidKey",
	InvalidLength:         "InvalidLength",
	InvalidValue:          "InvalidValue",
	UnknownValue:          "UnknownValue",
	NotEnoughFunds:        "NotEnoughFunds",
	NotFound:              "NotFound",
	AlreadyFound:          "AlreadyFound",
	InvalidLevel:          "InvalidLevel",
	ParsingFailure:        "ParsingFailure",
	InvalidDifficulty:     "InvalidDifficulty",
	InvalidCoinKind:       "InvalidCoinKind",
	InvalidCoin:           "InvalidCoin",
	InvalidRPCMethod:      "InvalidRPCMethod",
	InvalidMessagePrefix:  "InvalidMessagePrefix",
	InvalidMessageKind:    "InvalidMessageKind",
	InvalidMessageStatus:  "InvalidMessageStatus",
	InvalidRequest:        "InvalidRequest",
	InvalidResponse:       "InvalidResponse",
	InvalidIP:             "InvalidIp",
	MaxConnectionsReached: "MaxConnectionsReached",
	FailedConnection:      "FailedConnection",
	NotConnected:          "NotConnected",
	IO:                    "IO",
	Store:                 "Store",
	JSON:                  "JSON",
	Crypto:                "Crypto",
}

// String renders the kind the way the CLI prints it: "<ErrorKind>".
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "Other"
}

// Error is a Kind-tagged error, optionally wrapping an underlying cause
// and naming the operation that produced it.
type Error struct {
	kind Kind
	op   string
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.op != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.kind, e.op, e.err)
		}
		return fmt.Sprintf("%s: %s: %s", e.kind, e.op, e.msg)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.kind, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's category.
func (e *Error) Kind() Kind { return e.kind }

// New builds an Error of the given kind with a static message.
func New(kind Kind, op, msg string) *Error {
	return &Error{kind: kind, op: op, msg: msg}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, op: op, err: err}
}

// Is reports whether err (or anything it wraps) is a *Error of kind k.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// KindOf extracts the Kind of err, or Other if err isn't a *Error.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return Other
		}
		err = u.Unwrap()
	}
	return Other
}
