package protocol

import "strings"

// Response texts shared by the server and clients
const (
	// OK is the reply text for a successful SET
	OK = "Ok"

	// ErrorCommand is the failure reason for unparseable requests
	ErrorCommand = "Error command"

	// InternalError is written when the store owner dropped a request
	// without replying
	InternalError = "Internal server error: Handler task failed."
)

// Parse turns one request line into an Operation. It never fails:
// anything that is not a well-formed command becomes an Invalid operation.
func Parse(line string) Operation {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Invalid()
	}

	switch strings.ToUpper(fields[0]) {
	case "SET":
		if len(fields) >= 3 {
			return Set(fields[1], strings.Join(fields[2:], " "))
		}
	case "GET":
		if len(fields) >= 2 {
			return Get(fields[1])
		}
	case "DELETE":
		if len(fields) >= 2 {
			return Delete(fields[1])
		}
	}

	return Invalid()
}

// Format renders an operation as a request line, including the trailing
// newline. Invalid operations have no wire form and render as an empty line.
func Format(op Operation) string {
	if op.Kind == KindInvalid {
		return "\n"
	}
	return op.String() + "\n"
}
