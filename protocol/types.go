package protocol

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of an Operation
type Kind int

const (
	// KindInvalid is any line that does not form a valid command
	KindInvalid Kind = iota
	// KindSet stores a value under a key
	KindSet
	// KindGet reads the value stored under a key
	KindGet
	// KindDelete removes a key and returns its previous value
	KindDelete
)

// String returns the command keyword for the kind
func (k Kind) String() string {
	switch k {
	case KindSet:
		return "SET"
	case KindGet:
		return "GET"
	case KindDelete:
		return "DELETE"
	default:
		return "INVALID"
	}
}

// Operation is a parsed client request. Only the fields relevant to Kind
// are populated: Set uses Key and Value, Get and Delete use Key.
type Operation struct {
	Kind  Kind
	Key   string
	Value string
}

// Set returns a Set operation
func Set(key, value string) Operation {
	return Operation{Kind: KindSet, Key: key, Value: value}
}

// Get returns a Get operation
func Get(key string) Operation {
	return Operation{Kind: KindGet, Key: key}
}

// Delete returns a Delete operation
func Delete(key string) Operation {
	return Operation{Kind: KindDelete, Key: key}
}

// Invalid returns the operation produced by unparseable input
func Invalid() Operation {
	return Operation{Kind: KindInvalid}
}

// String returns a string representation of the operation
func (op Operation) String() string {
	switch op.Kind {
	case KindSet:
		return fmt.Sprintf("SET %s %s", op.Key, op.Value)
	case KindGet, KindDelete:
		return op.Kind.String() + " " + op.Key
	default:
		return "INVALID"
	}
}

// ReplyKind identifies the variant of a Reply
type ReplyKind int

const (
	// ReplyValue is a success carrying text
	ReplyValue ReplyKind = iota
	// ReplyNil is a success without a value (missing key)
	ReplyNil
	// ReplyFailure carries a failure reason
	ReplyFailure
)

// Reply is the outcome of processing one Operation
type Reply struct {
	Kind ReplyKind
	Text string
}

// Value returns a successful reply carrying text
func Value(text string) Reply {
	return Reply{Kind: ReplyValue, Text: text}
}

// Nil returns a successful reply without a value
func Nil() Reply {
	return Reply{Kind: ReplyNil}
}

// Failure returns a failed reply with the given reason
func Failure(reason string) Reply {
	return Reply{Kind: ReplyFailure, Text: reason}
}

// IsFailure returns true if this is a failure reply
func (r Reply) IsFailure() bool {
	return r.Kind == ReplyFailure
}

// String returns the reply as it appears on the wire, without the newline
func (r Reply) String() string {
	if r.Kind == ReplyNil {
		return ""
	}
	return strings.TrimSuffix(r.Text, "\n")
}
