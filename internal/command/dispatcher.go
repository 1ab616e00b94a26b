package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/alxayo/go-arcade/internal/command/schema"
	"github.com/alxayo/go-arcade/internal/gameerrors"
	"github.com/alxayo/go-arcade/internal/logging"
	"github.com/alxayo/go-arcade/internal/metrics"
)

// Dispatcher resolves CommandRequests by name and executes them against a
// validated, typed argument value.
type Dispatcher struct {
	mu       sync.RWMutex
	commands map[string]Command
	compiled map[string]*schema.Compiled
	opts     schema.Options
	metrics  *metrics.Metrics
	log      *logging.Logger
}

// NewDispatcher creates an empty Dispatcher. opts configures the argument
// schema codec for every registered command. A nil m falls back to a no-op
// collector set.
func NewDispatcher(opts schema.Options, m *metrics.Metrics, log *logging.Logger) *Dispatcher {
	if m == nil {
		m = metrics.Noop()
	}
	if log == nil {
		log = logging.NoOp()
	}
	return &Dispatcher{
		commands: make(map[string]Command),
		compiled: make(map[string]*schema.Compiled),
		opts:     opts,
		metrics:  m,
		log:      log.WithTag("command.dispatcher"),
	}
}

// Register compiles cmd's argument schema and adds it under cmd.Name().
// Fails if the name is already registered or the schema is malformed.
func (d *Dispatcher) Register(cmd Command) error {
	name := cmd.Name()
	if name == "" {
		return gameerrors.NewCommandError("register", fmt.Errorf("command name must not be empty"))
	}

	compiled, err := schema.Compile(cmd.ArgumentSchema(), d.opts)
	if err != nil {
		return gameerrors.NewCommandError("register", fmt.Errorf("command %q: %w", name, err))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.commands[name]; exists {
		return gameerrors.NewCommandError("register", fmt.Errorf("command %q already registered", name))
	}
	d.commands[name] = cmd
	d.compiled[name] = compiled
	return nil
}

// Handle resolves req.Name, validates and decodes req.Args, and executes
// the command. Every outcome — including a panic inside Execute — is
// reported as a Result rather than a Go error.
func (d *Dispatcher) Handle(ctx context.Context, req CommandRequest) (result Result) {
	defer func() {
		d.metrics.CommandResults.WithLabelValues(resultVariant(result)).Inc()
	}()

	d.mu.RLock()
	cmd, ok := d.commands[req.Name]
	compiled := d.compiled[req.Name]
	d.mu.RUnlock()

	if !ok {
		return CommandNotFound{Name: req.Name}
	}

	bag := req.Args
	if bag == nil {
		bag = map[string]any{}
	}
	raw, err := json.Marshal(bag)
	if err != nil {
		return SerializationFails{Err: fmt.Errorf("marshal request args: %w", err)}
	}

	args, err := compiled.Validate(raw, d.opts)
	if err != nil {
		return SerializationFails{Err: err}
	}

	d.log.Info("executing command", "name", req.Name)

	defer func() {
		if r := recover(); r != nil {
			result = Error{Recovered: fmt.Sprintf("%v", r)}
		}
	}()
	return cmd.Execute(&Context{Ctx: ctx, UserID: UserIDFromContext(ctx), Data: req.Args}, args)
}

// resultVariant names result's concrete type for the command_results_total
// label, one value per Result implementation.
func resultVariant(result Result) string {
	switch result.(type) {
	case Executed:
		return "executed"
	case SerializationFails:
		return "serialization_fails"
	case CommandNotFound:
		return "command_not_found"
	case ExecutionFailure:
		return "execution_failure"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
