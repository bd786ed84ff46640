package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stepwise/internal/graph"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/internal/validator"
	"github.com/aretw0/stepwise/pkg/domain"
)

// ErrInvalidConfig is returned by Validate when a machine has error-level issues.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate lints the named machines, or all of them when names is empty.
func (e *Env) Validate(p *tui.Printer, names ...string) error {
	if len(names) == 0 {
		names = e.Settings.Machines()
	}
	if len(names) == 0 {
		p.Warn("no machines configured")
		return nil
	}

	known := validator.Known{Validators: e.KnownValidators(), Callbacks: e.KnownCallbacks()}
	failed := 0
	for _, name := range names {
		cfg, ok := e.Settings.Machine(name)
		if !ok {
			p.Error("%s: %v", name, domain.ErrUnknownMachine)
			failed++
			continue
		}

		issues := validator.ValidateConfig(cfg, known)
		if validator.Err(issues) != nil {
			p.Error("%s", name)
			failed++
		} else {
			p.Success("%s", name)
		}
		for _, issue := range issues {
			if issue.Severity == validator.SeverityError {
				p.Error("  %s", issue)
			} else {
				p.Warn("  %s", issue)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d machines failed", ErrInvalidConfig, failed, len(names))
	}
	return nil
}

// Graph writes the Mermaid diagram of a machine. When recordID is set the
// record's history and current step are highlighted.
func (e *Env) Graph(ctx context.Context, p *tui.Printer, machine, recordID string) error {
	cfg, ok := e.Settings.Machine(machine)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMachine, machine)
	}

	var overlay *graph.Overlay
	if recordID != "" {
		rec, err := e.Manager.Load(ctx, recordID)
		if err != nil {
			return err
		}
		overlay = graph.OverlayFromRecord(rec, cfg.PropertyPath)
	}

	fmt.Fprint(p.Writer(), graph.GenerateMermaid(cfg, overlay))
	return nil
}

// Create stores a new record. It fails if the record already exists.
func (e *Env) Create(ctx context.Context, p *tui.Printer, recordID string, attributes map[string]any) error {
	if _, err := e.Manager.Load(ctx, recordID); err == nil {
		return fmt.Errorf("record %s already exists", recordID)
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}

	if _, err := e.Manager.LoadOrCreate(ctx, recordID, attributes); err != nil {
		return err
	}
	p.Success("created %s", recordID)
	return nil
}

// Show prints a record as JSON.
func (e *Env) Show(ctx context.Context, p *tui.Printer, recordID string) error {
	rec, err := e.Manager.Load(ctx, recordID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	fmt.Fprintln(p.Writer(), string(data))
	return nil
}

// Records prints every stored record ID.
func (e *Env) Records(ctx context.Context, p *tui.Printer) error {
	ids, err := e.Manager.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		p.Muted("no records")
		return nil
	}
	for _, id := range ids {
		p.Plain("%s", id)
	}
	return nil
}

// Transitions prints the steps of the machine with the record's current step
// highlighted, followed by the transitions available from it.
func (e *Env) Transitions(ctx context.Context, p *tui.Printer, machine, recordID string) error {
	cfg, ok := e.Settings.Machine(machine)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMachine, machine)
	}
	rec, err := e.Manager.Load(ctx, recordID)
	if err != nil {
		return err
	}
	possible, err := e.Manager.Possible(ctx, machine, recordID)
	if err != nil {
		return err
	}

	current := fmt.Sprint(rec.Attributes[cfg.PropertyPath])
	steps := make([]string, 0, len(cfg.Steps))
	for step := range cfg.Steps {
		steps = append(steps, step)
	}
	sort.Strings(steps)
	for _, step := range steps {
		p.Step(step, step == current)
	}

	if len(possible) == 0 {
		p.Muted("no transitions available")
		return nil
	}
	p.Plain("")
	for _, t := range possible {
		if t.Text != "" && t.Text != t.Key {
			p.Plain("→ %s (%s)", t.Key, t.Text)
		} else {
			p.Plain("→ %s", t.Key)
		}
	}
	return nil
}

// Apply runs a transition and prints the result.
func (e *Env) Apply(ctx context.Context, p *tui.Printer, machine, recordID, transition string) error {
	cfg, ok := e.Settings.Machine(machine)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMachine, machine)
	}

	rec, err := e.Manager.Apply(ctx, machine, recordID, transition)

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		p.Error("%s rejected", transition)
		for _, fe := range vErr.Errors {
			p.Error("  %s", fe.Message)
		}
		return err
	}
	if err != nil {
		var cbErr *domain.CallbackError
		if errors.As(err, &cbErr) && cbErr.Phase == domain.PhasePost && rec != nil {
			p.Warn("%s applied, now %v, but a post callback failed", transition, rec.Attributes[cfg.PropertyPath])
		}
		return err
	}

	p.Success("%s: now %v", transition, rec.Attributes[cfg.PropertyPath])
	return nil
}

// History prints the transitions recorded on a record.
func (e *Env) History(ctx context.Context, p *tui.Printer, recordID string) error {
	rec, err := e.Manager.Load(ctx, recordID)
	if err != nil {
		return err
	}
	if len(rec.History) == 0 {
		p.Muted("no history")
		return nil
	}
	for _, h := range rec.History {
		from := h.From
		if from == "" {
			from = "∅"
		}
		p.Plain("%s  %-12s %s -> %s", h.At.Format("2006-01-02T15:04:05Z07:00"), h.Transition, from, h.To)
	}
	return nil
}

// ParseAttributes turns key=value pairs into an attribute map.
func ParseAttributes(pairs []string) (map[string]any, error) {
	attrs := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q, want key=value", pair)
		}
		attrs[key] = value
	}
	return attrs, nil
}
