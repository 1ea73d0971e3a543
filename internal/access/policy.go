package access

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"consultancy-portal/internal/shared/logger"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"
)

// Operation is one of the verbs a rule can grant.
type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

var operations = map[Operation]bool{OpList: true, OpGet: true, OpCreate: true, OpUpdate: true, OpDelete: true}

//go:embed default_rules.yaml
var defaultRules []byte

// RuleFile is the YAML layout of a rules file.
type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Rule grants operations on resources when the CEL condition holds.
// "*" matches every resource.
type Rule struct {
	Resources []string             `yaml:"resources"`
	Allow     map[Operation]string `yaml:"allow"`
}

// Subject is the caller being authorized. An empty ID means anonymous.
type Subject struct {
	ID    string
	Email string
	Role  string
}

// Request describes one access check.
type Request struct {
	Subject    Subject
	Resource   string
	Operation  Operation
	ResourceID string
	Method     string
	Path       string
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Allowed bool
	Rule    string
}

type compiledRule struct {
	resource string
	op       Operation
	source   string
	program  cel.Program
}

// Policy holds compiled rules keyed by resource and operation. Programs are
// compiled once and are safe for concurrent evaluation.
type Policy struct {
	rules  map[string]map[Operation][]compiledRule
	logger logger.Logger
}

// LoadPolicy reads rules from path, or the built-in rules when path is empty.
func LoadPolicy(path string, log logger.Logger) (*Policy, error) {
	data := defaultRules
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read access rules %s: %w", path, err)
		}
		data = raw
	}
	return ParsePolicy(data, log)
}

// ParsePolicy compiles a YAML rules document.
func ParsePolicy(data []byte, log logger.Logger) (*Policy, error) {
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse access rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("access rules define no rules")
	}

	env, err := newEnvironment()
	if err != nil {
		return nil, err
	}

	p := &Policy{rules: make(map[string]map[Operation][]compiledRule), logger: log.WithComponent("access")}
	for i, entry := range file.Rules {
		if len(entry.Resources) == 0 {
			return nil, fmt.Errorf("rule %d: no resources", i)
		}
		for op, expr := range entry.Allow {
			if !operations[op] {
				return nil, fmt.Errorf("rule %d: unknown operation %q", i, op)
			}
			program, err := compile(env, expr)
			if err != nil {
				return nil, fmt.Errorf("rule %d %s: %w", i, op, err)
			}
			for _, resource := range entry.Resources {
				resource = strings.TrimSpace(resource)
				if p.rules[resource] == nil {
					p.rules[resource] = make(map[Operation][]compiledRule)
				}
				p.rules[resource][op] = append(p.rules[resource][op], compiledRule{
					resource: resource,
					op:       op,
					source:   expr,
					program:  program,
				})
			}
		}
	}
	return p, nil
}

func newEnvironment() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("auth", cel.DynType),
		cel.Variable("request", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("resource", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return env, nil
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compilation error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q must be boolean, got %s", expr, t)
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return program, nil
}

// Evaluate allows the request when any matching rule's condition is true.
// No matching rule, an evaluation error or a non-boolean result denies.
func (p *Policy) Evaluate(req Request) Decision {
	candidates := append(append([]compiledRule{}, p.rules[req.Resource][req.Operation]...), p.rules["*"][req.Operation]...)
	if len(candidates) == 0 {
		return Decision{}
	}

	vars := map[string]interface{}{
		"auth":     authValue(req.Subject),
		"resource": req.Resource,
		"request": map[string]string{
			"id":        req.ResourceID,
			"method":    req.Method,
			"path":      req.Path,
			"operation": string(req.Operation),
		},
	}
	for _, rule := range candidates {
		out, _, err := rule.program.Eval(vars)
		if err != nil {
			p.logger.Warnf("access rule %q for %s/%s failed: %v", rule.source, rule.resource, rule.op, err)
			continue
		}
		if allowed, ok := out.Value().(bool); ok && allowed {
			return Decision{Allowed: true, Rule: rule.source}
		}
	}
	return Decision{}
}

// Resources lists the resources that have at least one rule.
func (p *Policy) Resources() []string {
	out := make([]string, 0, len(p.rules))
	for r := range p.rules {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func authValue(s Subject) interface{} {
	if s.ID == "" {
		return nil
	}
	return map[string]interface{}{
		"uid":   s.ID,
		"email": s.Email,
		"role":  s.Role,
	}
}
