package gpt

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/venicegeo/bf-snap/graph"
	"github.com/venicegeo/bf-snap/util"
)

// ParameterDescriptor describes one operator parameter as reported by gpt
type ParameterDescriptor struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	DefaultValue *string `json:"defaultValue,omitempty"`
}

// Registry looks up operator parameter descriptors from gpt's operator help
// and caches them per operator
type Registry struct {
	config Config
	help   func(ctx context.Context, operator string) ([]byte, error)

	mu    sync.Mutex
	cache map[string][]ParameterDescriptor
}

// NewRegistry creates a Registry backed by the configured gpt executable
func NewRegistry(config Config) *Registry {
	r := &Registry{config: config, cache: map[string][]ParameterDescriptor{}}
	r.help = r.gptHelp
	return r
}

// Descriptors returns the parameter descriptors of an operator
func (r *Registry) Descriptors(ctx context.Context, operator string) ([]ParameterDescriptor, error) {
	r.mu.Lock()
	cached, ok := r.cache[operator]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := r.help(ctx, operator)
	if err != nil {
		return nil, err
	}
	descriptors, err := ParseOperatorHelp(string(out))
	if err != nil {
		return nil, fmt.Errorf("operator %s: %w", operator, err)
	}

	r.mu.Lock()
	r.cache[operator] = descriptors
	r.mu.Unlock()
	return descriptors, nil
}

// Defaults returns every parameter of an operator with its default value;
// parameters without a default are returned empty
func (r *Registry) Defaults(ctx context.Context, operator string) (graph.Parameters, error) {
	descriptors, err := r.Descriptors(ctx, operator)
	if err != nil {
		return nil, err
	}
	params := make(graph.Parameters, len(descriptors))
	for i, d := range descriptors {
		if d.DefaultValue == nil {
			params[i] = graph.EmptyParam(d.Name)
		} else {
			params[i] = graph.Param(d.Name, *d.DefaultValue)
		}
	}
	return params, nil
}

func (r *Registry) gptHelp(ctx context.Context, operator string) ([]byte, error) {
	ctxLog := &util.BasicLogContext{}
	util.LogAudit(ctxLog, util.LogAuditInput{Actor: util.AppName, Action: "exec", Actee: r.config.Path, Message: "Requesting help for operator " + operator, Severity: util.DEBUG})

	cmd := exec.CommandContext(ctx, r.config.Path, operator, "-h")
	cmd.Dir = r.config.WorkDir
	// gpt exits non-zero after printing help on some releases, so the exit
	// status is not trusted; the output is checked instead.
	out, err := cmd.CombinedOutput()
	if !strings.Contains(string(out), "Usage:") {
		if err == nil {
			err = fmt.Errorf("unexpected output")
		}
		return nil, util.LogSimpleErr(ctxLog, fmt.Sprintf("Failed to get help for operator %s: %s", operator, strings.TrimSpace(string(out))), err)
	}
	return out, nil
}

var (
	parameterLine = regexp.MustCompile(`^\s+-P([^=\s]+)=<([^>]*)>\s*(.*)$`)
	defaultLine   = regexp.MustCompile(`^\s*Default value is '(.*)'\.?\s*$`)
)

const parameterSection = "Parameter Options:"

// ParseOperatorHelp extracts the parameter descriptors from the output of
// `gpt <operator> -h`
func ParseOperatorHelp(help string) ([]ParameterDescriptor, error) {
	if !strings.Contains(help, "Usage:") {
		return nil, fmt.Errorf("not operator help output")
	}

	descriptors := []ParameterDescriptor{}
	var current *ParameterDescriptor
	inSection := false

	scanner := bufio.NewScanner(strings.NewReader(help))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if !inSection {
			inSection = trimmed == parameterSection
			continue
		}
		if trimmed == "" {
			continue
		}
		// Any unindented line starts the next section.
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			break
		}

		if m := parameterLine.FindStringSubmatch(line); m != nil {
			descriptors = append(descriptors, ParameterDescriptor{Name: m[1], Type: m[2], Description: strings.TrimSpace(m[3])})
			current = &descriptors[len(descriptors)-1]
			continue
		}
		if current == nil {
			continue
		}
		if m := defaultLine.FindStringSubmatch(line); m != nil {
			value := m[1]
			current.DefaultValue = &value
			continue
		}
		if current.Description == "" {
			current.Description = trimmed
		} else {
			current.Description += " " + trimmed
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return descriptors, nil
}
