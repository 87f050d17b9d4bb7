// Package version implements declarative workflow construction (Builder),
// version registration and lookup (Manager), the structure query API, and
// deprecated-version refusal. Manager is the fan-out point for the whole
// engine API surface; it resolves a definition whenever a workflow
// instance (root or child) is created.
package version

import (
	"fmt"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

// ConditionSpec declares one place in the net, referenced by name from
// EdgeSpec and RegionSpec.
type ConditionSpec struct {
	Name       string
	IsStart    bool
	IsEnd      bool
	IsImplicit bool
}

// TaskSpec declares one transition in the net.
type TaskSpec struct {
	Name             string
	Kind             net.TaskKind
	JoinType         net.JoinType
	SplitType        net.SplitType
	RouterExpr       *string
	WorkItemTemplate *net.WorkItemTemplate
	SubWorkflowNames []string
}

// EdgeSpec declares a connection between a named condition and a named
// task (in either direction, per Kind).
type EdgeSpec struct {
	Kind net.FlowKind
	From string
	To   string
}

// RegionSpec declares a cancellation region: OwnerName is the task that
// triggers it on its own termination; TaskNames/ConditionNames are the
// elements it cancels.
type RegionSpec struct {
	OwnerName      string
	TaskNames      []string
	ConditionNames []string
}

// Definition is the validated, immutable template Build produces.
type Definition struct {
	Name       string
	Version    string
	Deprecated bool

	Conditions []ConditionSpec
	Tasks      []TaskSpec
	Edges      []EdgeSpec
	Regions    []RegionSpec
}

// Builder accumulates a Definition declaratively. Every method returns
// the Builder for chaining.
type Builder struct {
	def *Definition
	err error
}

// NewBuilder starts building a workflow definition named name at
// version.
func NewBuilder(name, version string) *Builder {
	return &Builder{def: &Definition{Name: name, Version: version}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Condition declares a place. A definition must declare exactly one
// IsStart and one IsEnd condition.
func (b *Builder) Condition(name string, isStart, isEnd bool) *Builder {
	b.def.Conditions = append(b.def.Conditions, ConditionSpec{Name: name, IsStart: isStart, IsEnd: isEnd})
	return b
}

// Task declares a transition.
func (b *Builder) Task(spec TaskSpec) *Builder {
	b.def.Tasks = append(b.def.Tasks, spec)
	return b
}

// Edge declares a connection between a named condition and a named task.
func (b *Builder) Edge(kind net.FlowKind, from, to string) *Builder {
	b.def.Edges = append(b.def.Edges, EdgeSpec{Kind: kind, From: from, To: to})
	return b
}

// CancellationRegion declares a region owned by ownerName.
func (b *Builder) CancellationRegion(ownerName string, taskNames, conditionNames []string) *Builder {
	b.def.Regions = append(b.def.Regions, RegionSpec{
		OwnerName: ownerName, TaskNames: taskNames, ConditionNames: conditionNames,
	})
	return b
}

// Deprecate marks the definition as deprecated: root initialization will
// be refused once registered, though running instances and their
// children are unaffected.
func (b *Builder) Deprecate() *Builder {
	b.def.Deprecated = true
	return b
}

// expandTaskToTaskEdges rewrites every FlowTaskToTask edge into a
// task->condition + condition->task pair through a fresh implicit
// condition, per the net's invariant that a task-to-task edge is
// materialized as an implicit condition during construction. conds and
// tasks are updated in place so later validation sees the synthesized
// condition and edges instead of the original shorthand.
func (b *Builder) expandTaskToTaskEdges(conds map[string]ConditionSpec, tasks map[string]TaskSpec) error {
	expanded := make([]EdgeSpec, 0, len(b.def.Edges))
	for _, e := range b.def.Edges {
		if e.Kind != net.FlowTaskToTask {
			expanded = append(expanded, e)
			continue
		}
		if _, ok := tasks[e.From]; !ok {
			return errs.New(errs.CodeConfiguration, nil, map[string]any{"edge": e.From, "reason": "unknown task"})
		}
		if _, ok := tasks[e.To]; !ok {
			return errs.New(errs.CodeConfiguration, nil, map[string]any{"edge": e.To, "reason": "unknown task"})
		}
		implicitName := fmt.Sprintf("__implicit_%s_%s", e.From, e.To)
		if _, dup := conds[implicitName]; dup {
			return errs.New(errs.CodeConfiguration, nil, map[string]any{"condition": implicitName, "reason": "duplicate implicit condition name"})
		}
		cs := ConditionSpec{Name: implicitName, IsImplicit: true}
		conds[implicitName] = cs
		b.def.Conditions = append(b.def.Conditions, cs)
		expanded = append(expanded,
			EdgeSpec{Kind: net.FlowTaskToCondition, From: e.From, To: implicitName},
			EdgeSpec{Kind: net.FlowConditionToTask, From: implicitName, To: e.To},
		)
	}
	b.def.Edges = expanded
	return nil
}

// Build validates the accumulated declaration and returns the Definition,
// or the first structural error encountered.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.Name == "" || b.def.Version == "" {
		return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"reason": "workflow definition requires a name and version"})
	}
	conds := make(map[string]ConditionSpec, len(b.def.Conditions))
	var starts, ends int
	for _, c := range b.def.Conditions {
		if _, dup := conds[c.Name]; dup {
			return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"condition": c.Name, "reason": "duplicate condition name"})
		}
		conds[c.Name] = c
		if c.IsStart {
			starts++
		}
		if c.IsEnd {
			ends++
		}
	}
	if starts != 1 {
		return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"reason": fmt.Sprintf("definition must declare exactly one start condition, found %d", starts)})
	}
	if ends != 1 {
		return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"reason": fmt.Sprintf("definition must declare exactly one end condition, found %d", ends)})
	}

	tasks := make(map[string]TaskSpec, len(b.def.Tasks))
	for _, t := range b.def.Tasks {
		if _, dup := tasks[t.Name]; dup {
			return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"task": t.Name, "reason": "duplicate task name"})
		}
		if (t.JoinType == net.JoinXOR || t.JoinType == net.JoinOR || t.SplitType == net.SplitXOR || t.SplitType == net.SplitOR) && t.RouterExpr == nil {
			// Join routing needs no expression (inbound choice is driven by
			// which upstream fired); only a non-AND split needs one.
			if t.SplitType == net.SplitXOR || t.SplitType == net.SplitOR {
				return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"task": t.Name, "reason": "XOR/OR split requires a router expression"})
			}
		}
		if (t.Kind == net.TaskKindComposite || t.Kind == net.TaskKindDynamicComposite) && len(t.SubWorkflowNames) == 0 {
			return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"task": t.Name, "reason": "composite task must name at least one sub-workflow type"})
		}
		tasks[t.Name] = t
	}

	if err := b.expandTaskToTaskEdges(conds, tasks); err != nil {
		return nil, err
	}

	for _, e := range b.def.Edges {
		switch e.Kind {
		case net.FlowConditionToTask:
			if _, ok := conds[e.From]; !ok {
				return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"edge": e.From, "reason": "unknown condition"})
			}
			if _, ok := tasks[e.To]; !ok {
				return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"edge": e.To, "reason": "unknown task"})
			}
		case net.FlowTaskToCondition:
			if _, ok := tasks[e.From]; !ok {
				return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"edge": e.From, "reason": "unknown task"})
			}
			if _, ok := conds[e.To]; !ok {
				return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"edge": e.To, "reason": "unknown condition"})
			}
		default:
			return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"reason": "task-to-task edges must be pre-split into condition<->task pairs"})
		}
	}

	for _, r := range b.def.Regions {
		if _, ok := tasks[r.OwnerName]; !ok {
			return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"region owner": r.OwnerName, "reason": "unknown task"})
		}
		for _, n := range r.TaskNames {
			if _, ok := tasks[n]; !ok {
				return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"region task": n, "reason": "unknown task"})
			}
		}
		for _, n := range r.ConditionNames {
			if _, ok := conds[n]; !ok {
				return nil, errs.New(errs.CodeConfiguration, nil, map[string]any{"region condition": n, "reason": "unknown condition"})
			}
		}
	}

	return b.def, nil
}
