package demo

import "github.com/alxayo/go-arcade/internal/command"

// WhoAmIArgs is the argument schema for WhoAmICommand. Loud is optional and
// defaults to false, its Go zero value.
type WhoAmIArgs struct {
	Loud bool `json:"loud" arg:"desc=whether to shout the answer"`
}

// WhoAmICommand reports the acting user's id, optionally shouted.
type WhoAmICommand struct{}

// Name implements command.Command.
func (WhoAmICommand) Name() string { return "whoami" }

// ShortDescription implements command.Command.
func (WhoAmICommand) ShortDescription() string { return "report the acting user id" }

// DetailedDescription implements command.Command.
func (WhoAmICommand) DetailedDescription() string {
	return "reports the user id attached to the issuing session, optionally followed by an exclamation mark"
}

// CompletionMessage implements command.Command.
func (WhoAmICommand) CompletionMessage() string { return "done" }

// ArgumentSchema implements command.Command.
func (WhoAmICommand) ArgumentSchema() any { return &WhoAmIArgs{} }

// Execute implements command.Command.
func (WhoAmICommand) Execute(ctx *command.Context, args any) command.Result {
	a := args.(*WhoAmIArgs)
	id := ctx.UserID
	if id == "" {
		id = "[Undetermined]"
	}
	if a.Loud {
		id = id + "!"
	}
	return command.Executed{Message: "done", Value: id}
}
