// Package commands parses input typed into an open chat room or ticket
// thread. Lines starting with a slash are commands; anything else is sent
// as a message.
package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeSend    Type = "send"
	TypeImage   Type = "image"
	TypeRefresh Type = "refresh"
	TypeExit    Type = "exit"
	TypeClose   Type = "close"
	TypeHelp    Type = "help"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type SendArgs struct {
	Body string
}

type ImageArgs struct {
	Path string
}

type Command struct {
	Type  Type
	Raw   string
	Send  *SendArgs
	Image *ImageArgs
}

// Usage lists the commands accepted in a thread.
const Usage = "/image <path>  send a picture\n/refresh  reload messages\n/exit  leave the chat room\n/close  close the ticket\n/help  show this list"

func Parse(input string) (Command, error) {
	raw := strings.TrimRight(input, "\r\n")
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "message is empty"}
	}
	// "//text" escapes a message that starts with a slash.
	if strings.HasPrefix(trimmed, "//") {
		return Command{Type: TypeSend, Raw: raw, Send: &SendArgs{Body: trimmed[1:]}}, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Type: TypeSend, Raw: raw, Send: &SendArgs{Body: trimmed}}, nil
	}

	parts := strings.Fields(strings.TrimPrefix(trimmed, "/"))
	if len(parts) == 0 {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeImage:
		return parseImage(raw, trimmed)
	case TypeRefresh, TypeExit, TypeClose, TypeHelp:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: raw}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseImage keeps spaces inside the path.
func parseImage(raw, trimmed string) (Command, error) {
	rest := strings.TrimSpace(trimmed[len("/image"):])
	rest = strings.Trim(rest, `"'`)
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "image requires a file path"}
	}
	return Command{Type: TypeImage, Raw: raw, Image: &ImageArgs{Path: rest}}, nil
}
