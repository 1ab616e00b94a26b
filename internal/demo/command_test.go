package demo

import (
	"context"
	"testing"

	"github.com/alxayo/go-arcade/internal/command"
	"github.com/alxayo/go-arcade/internal/command/schema"
)

func TestWhoAmICommandRegistersAndExecutes(t *testing.T) {
	d := command.NewDispatcher(schema.Options{}, nil, nil)
	if err := d.Register(WhoAmICommand{}); err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}

	ctx := command.WithUserID(context.Background(), "player-7")
	result := d.Handle(ctx, command.CommandRequest{Name: "whoami", Args: map[string]any{"loud": true}})

	exec, ok := result.(command.Executed)
	if !ok {
		t.Fatalf("expected Executed, got %T", result)
	}
	if exec.Value != "player-7!" {
		t.Fatalf("expected %q, got %v", "player-7!", exec.Value)
	}
}

func TestWhoAmICommandDefaultsToUndetermined(t *testing.T) {
	d := command.NewDispatcher(schema.Options{}, nil, nil)
	if err := d.Register(WhoAmICommand{}); err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}

	result := d.Handle(context.Background(), command.CommandRequest{Name: "whoami"})
	exec, ok := result.(command.Executed)
	if !ok {
		t.Fatalf("expected Executed, got %T", result)
	}
	if exec.Value != "[Undetermined]" {
		t.Fatalf("expected [Undetermined], got %v", exec.Value)
	}
}
