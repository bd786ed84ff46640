package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Describe prints a Markdown summary of a machine. Unless raw is set the
// Markdown is rendered for the terminal.
func (e *Env) Describe(p *tui.Printer, machine string, raw bool) error {
	cfg, ok := e.Settings.Machine(machine)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownMachine, machine)
	}

	doc := DescribeMarkdown(machine, cfg)
	if raw {
		fmt.Fprint(p.Writer(), doc)
		return nil
	}

	render, err := tui.NewRenderer(0)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := render(doc)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	fmt.Fprint(p.Writer(), out)
	return nil
}

// DescribeMarkdown renders the steps and transitions of a machine as Markdown tables.
func DescribeMarkdown(name string, cfg domain.Config) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "State is stored in the `%s` attribute.\n\n", cfg.PropertyPath)

	sb.WriteString("## Steps\n\n| Step | Label | Terminal |\n| --- | --- | --- |\n")
	for _, id := range cfg.Steps.IDs() {
		terminal := ""
		if len(cfg.From(id)) == 0 {
			terminal = "yes"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", id, cfg.Steps[id], terminal)
	}

	sb.WriteString("\n## Transitions\n\n| Transition | From | To | Validators | Callbacks |\n| --- | --- | --- | --- | --- |\n")
	for _, t := range cfg.TransitionNames() {
		spec := cfg.Transitions[t]
		label := t
		if spec.Text != "" {
			label = fmt.Sprintf("%s (%s)", t, spec.Text)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			label, spec.From, spec.To, describeValidators(spec.Validators), describeCallbacks(spec.Callbacks))
	}
	return sb.String()
}

func describeValidators(set domain.ValidatorSet) string {
	if set == nil {
		return "_none, always rejected_"
	}
	if len(set) == 0 {
		return "_empty_"
	}
	var parts []string
	for _, rule := range set {
		fields := make([]string, 0, len(rule.Rules))
		for field := range rule.Rules {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			parts = append(parts, fmt.Sprintf("%s: `%s` (%s)", field, strings.ReplaceAll(rule.Rules[field], "|", "\\|"), rule.ValidatorID()))
		}
		if len(fields) == 0 {
			parts = append(parts, rule.ValidatorID())
		}
	}
	return strings.Join(parts, "<br>")
}

func describeCallbacks(cb domain.Callbacks) string {
	var parts []string
	for _, phase := range []domain.Phase{domain.PhasePre, domain.PhasePost} {
		ids, _ := cb.Phase(phase)
		if len(ids) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", phase, strings.Join(ids, ", ")))
		}
	}
	return strings.Join(parts, "; ")
}
