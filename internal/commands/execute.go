package commands

import "fmt"

type Result struct {
	Message string
	// Leave is set when the thread should be closed after this command.
	Leave bool
}

type Handlers struct {
	Send    func(SendArgs) (Result, error)
	Image   func(ImageArgs) (Result, error)
	Refresh func() (Result, error)
	Exit    func() (Result, error)
	Close   func() (Result, error)
}

// Execute runs cmd. A thread that does not support a command leaves its
// handler nil; /help is answered without a handler.
func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeSend:
		if handlers.Send == nil {
			return Result{}, missing("send")
		}
		return handlers.Send(*cmd.Send)
	case TypeImage:
		if handlers.Image == nil {
			return Result{}, missing("image")
		}
		return handlers.Image(*cmd.Image)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing("refresh")
		}
		return handlers.Refresh()
	case TypeExit:
		if handlers.Exit == nil {
			return Result{}, missing("exit")
		}
		return handlers.Exit()
	case TypeClose:
		if handlers.Close == nil {
			return Result{}, missing("close")
		}
		return handlers.Close()
	case TypeHelp:
		return Result{Message: Usage}, nil
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s is not available here", name)}
}
