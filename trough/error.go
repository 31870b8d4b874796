package trough

import "fmt"

// OriginPrefix is the fully-qualified name prefix of the trough COM automation
// interface. Error descriptors identify the failing capability as
// "KBNuTAXCtrl.KBNuTAX.<Name>".
const OriginPrefix = "KBNuTAXCtrl.KBNuTAX."

// Descriptor codes for faults detected by the server itself rather than the
// instrument driver. They never collide with the driver error table (0..-9).
const (
	// CodeUnrecognisedCommand is reported for a call name absent from the
	// capability set.
	CodeUnrecognisedCommand = -100
	// CodeUnknownControl is reported for an unrecognised ctrl command name.
	CodeUnknownControl = -110
	// CodeInvalidArgument is reported for a recognised command with an invalid
	// parameter value. The command leaves all state unchanged.
	CodeInvalidArgument = -111
	// CodeUnknownProperty is reported for a get/set of a property absent from
	// the property set.
	CodeUnknownProperty = -112
	// CodeParseError is reported for a request line that is not a command.
	CodeParseError = -120
)

// CallError describes a command that could not be completed. It renders in the
// driver's descriptor format, which clients parse:
//
//	CallError(-100, 'Unrecognised command name', 'KBNuTAXCtrl.KBNuTAX.NotACommand')
type CallError struct {
	Code    int
	Message string
	Origin  string
}

// NewCallError creates a CallError descriptor.
func NewCallError(code int, message, origin string) *CallError {
	return &CallError{Code: code, Message: message, Origin: origin}
}

// Unrecognised creates the descriptor for a call name that is not a capability.
func Unrecognised(name string) *CallError {
	return &CallError{
		Code:    CodeUnrecognisedCommand,
		Message: "Unrecognised command name",
		Origin:  OriginPrefix + name,
	}
}

func (e *CallError) Error() string {
	return fmt.Sprintf("CallError(%d, '%s', '%s')", e.Code, e.Message, e.Origin)
}
