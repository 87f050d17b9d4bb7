package version

import (
	"context"
	"sort"
	"sync"

	"github.com/yawlrun/yawlrun/audit"
	"github.com/yawlrun/yawlrun/authz"
	"github.com/yawlrun/yawlrun/cancel"
	"github.com/yawlrun/yawlrun/ctxrun"
	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/firing"
	"github.com/yawlrun/yawlrun/marking"
	"github.com/yawlrun/yawlrun/net"
	"github.com/yawlrun/yawlrun/subwf"
)

// Manager registers named, versioned Definitions and fans out the full
// engine API surface against them: it is the top-level entry point
// embedding applications call.
type Manager struct {
	mu    sync.RWMutex
	defs  map[string]map[string]*Definition
	order map[string][]string // insertion order of versions per name, for "latest"

	store      marking.Store
	auditStore audit.Store
	router     *firing.Router
	registry   *authz.Registry
}

// NewManager builds a Manager backed by store/auditStore for persistence,
// reg for offer/claim policy evaluation.
func NewManager(store marking.Store, auditStore audit.Store, reg *authz.Registry) (*Manager, error) {
	router, err := firing.NewRouter()
	if err != nil {
		return nil, err
	}
	return &Manager{
		defs:       make(map[string]map[string]*Definition),
		order:      make(map[string][]string),
		store:      store,
		auditStore: auditStore,
		router:     router,
		registry:   reg,
	}, nil
}

// Register adds def under its Name/Version. Registering the same
// name/version twice replaces the prior definition.
func (m *Manager) Register(def *Definition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.defs[def.Name] == nil {
		m.defs[def.Name] = make(map[string]*Definition)
	}
	if _, exists := m.defs[def.Name][def.Version]; !exists {
		m.order[def.Name] = append(m.order[def.Name], def.Version)
	}
	m.defs[def.Name][def.Version] = def
}

// Deprecate marks name/version as deprecated in place.
func (m *Manager) Deprecate(name, ver string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.defs[name][ver]
	if !ok {
		return errs.NotFound("workflowDefinition", name+"@"+ver)
	}
	d.Deprecated = true
	return nil
}

func (m *Manager) get(name, ver string) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions, ok := m.defs[name]
	if !ok {
		return nil, errs.NotFound("workflowDefinition", name)
	}
	if ver == "" {
		order := m.order[name]
		if len(order) == 0 {
			return nil, errs.NotFound("workflowDefinition", name)
		}
		return versions[order[len(order)-1]], nil
	}
	d, ok := versions[ver]
	if !ok {
		return nil, errs.NotFound("workflowDefinition", name+"@"+ver)
	}
	return d, nil
}

// Versions returns every registered version string for name, sorted in
// lexical string order.
func (m *Manager) Versions(name string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]string(nil), m.order[name]...)
	sort.Strings(out)
	return out
}

// Instantiate implements subwf.Factory: it materializes a brand-new net
// instance (fresh ids throughout) for the most recently registered
// version of name, whether or not that version is deprecated. Used for
// composite/dynamic-composite child spawning, so deprecation never blocks
// spawning a child under a running instance.
func (m *Manager) Instantiate(_ context.Context, name string) (*subwf.Elements, error) {
	def, err := m.get(name, "")
	if err != nil {
		return nil, err
	}
	return instantiate(def)
}

// instantiate expands a Definition template into a fresh net.Workflow
// plus its Conditions/Tasks/Edges/CancellationRegions, generating new ids
// and resolving every name reference to the matching id.
func instantiate(def *Definition) (*subwf.Elements, error) {
	wfID := net.MustNewID()
	condByName := make(map[string]*net.Condition, len(def.Conditions))
	var startID, endID net.ID
	conditions := make([]*net.Condition, 0, len(def.Conditions))
	for _, cs := range def.Conditions {
		c := &net.Condition{
			ID: net.MustNewID(), WorkflowID: wfID, Name: cs.Name,
			IsStart: cs.IsStart, IsEnd: cs.IsEnd, IsImplicit: cs.IsImplicit,
		}
		condByName[cs.Name] = c
		conditions = append(conditions, c)
		if cs.IsStart {
			startID = c.ID
		}
		if cs.IsEnd {
			endID = c.ID
		}
	}

	taskByName := make(map[string]*net.Task, len(def.Tasks))
	tasks := make([]*net.Task, 0, len(def.Tasks))
	for _, ts := range def.Tasks {
		t := &net.Task{
			ID: net.MustNewID(), WorkflowID: wfID, Name: ts.Name, Kind: ts.Kind,
			JoinType: ts.JoinType, SplitType: ts.SplitType, State: net.TaskDisabled,
			RouterExpr: ts.RouterExpr, WorkItemTemplate: ts.WorkItemTemplate,
			SubWorkflowNames: ts.SubWorkflowNames,
		}
		taskByName[ts.Name] = t
		tasks = append(tasks, t)
	}

	edges := make([]*net.FlowEdge, 0, len(def.Edges))
	for _, es := range def.Edges {
		e := &net.FlowEdge{ID: net.MustNewID(), WorkflowID: wfID, Kind: es.Kind}
		switch es.Kind {
		case net.FlowConditionToTask:
			e.FromID = condByName[es.From].ID
			e.ToID = taskByName[es.To].ID
		case net.FlowTaskToCondition:
			e.FromID = taskByName[es.From].ID
			e.ToID = condByName[es.To].ID
		}
		edges = append(edges, e)
	}

	regions := make([]*net.CancellationRegion, 0, len(def.Regions))
	for _, rs := range def.Regions {
		r := &net.CancellationRegion{ID: net.MustNewID(), WorkflowID: wfID, OwnerID: taskByName[rs.OwnerName].ID}
		for _, n := range rs.TaskNames {
			r.TaskIDs = append(r.TaskIDs, taskByName[n].ID)
		}
		for _, n := range rs.ConditionNames {
			r.ConditionIDs = append(r.ConditionIDs, condByName[n].ID)
		}
		taskByName[rs.OwnerName].CancellationRegionID = &r.ID
		regions = append(regions, r)
	}

	wf := &net.Workflow{
		ID: wfID, DefinitionName: def.Name, DefinitionVer: def.Version,
		State: net.WorkflowInitialized, StartConditionID: startID, EndConditionID: endID,
	}
	return &subwf.Elements{Workflow: wf, Conditions: conditions, Tasks: tasks, Edges: edges, CancellationRegions: regions}, nil
}

// InitializeRootWorkflow creates a new root workflow instance of name at
// version ver ("" selects the latest). Refuses a deprecated version with
// CodeWorkflowDeprecated.
func (m *Manager) InitializeRootWorkflow(ctx context.Context, name, ver string) (*net.Workflow, error) {
	def, err := m.get(name, ver)
	if err != nil {
		return nil, err
	}
	if def.Deprecated {
		return nil, errs.New(errs.CodeWorkflowDeprecated, nil, map[string]any{"workflow": name, "version": def.Version})
	}
	elements, err := instantiate(def)
	if err != nil {
		return nil, err
	}

	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "initializeRootWorkflow", name, def.Version)
	if err != nil {
		return nil, err
	}
	tx := rc.Tx()
	elements.Workflow.State = net.WorkflowStarted
	if err := tx.CreateWorkflow(ctx, elements.Workflow); err != nil {
		rc.Rollback()
		return nil, err
	}
	for _, c := range elements.Conditions {
		if err := tx.CreateCondition(ctx, c); err != nil {
			rc.Rollback()
			return nil, err
		}
	}
	for _, t := range elements.Tasks {
		if err := tx.CreateTask(ctx, t); err != nil {
			rc.Rollback()
			return nil, err
		}
	}
	for _, e := range elements.Edges {
		if err := tx.CreateFlowEdge(ctx, e); err != nil {
			rc.Rollback()
			return nil, err
		}
	}
	for _, r := range elements.CancellationRegions {
		if err := tx.CreateCancellationRegion(ctx, r); err != nil {
			rc.Rollback()
			return nil, err
		}
	}
	if _, err := tx.ProduceTokens(ctx, elements.Workflow.StartConditionID, 1); err != nil {
		rc.Rollback()
		return nil, err
	}
	for _, t := range elements.Tasks {
		if err := firing.RecomputeEnablement(ctx, tx, tx, t); err != nil {
			rc.Rollback()
			return nil, err
		}
	}
	rc.EmitKeyEvent(&audit.KeyEvent{
		Kind: audit.KeyEventCreate, ElementKind: audit.ElementWorkflow,
		ElementID: elements.Workflow.ID, WorkflowID: elements.Workflow.ID,
		State: string(elements.Workflow.State),
	})
	if err := rc.Commit(); err != nil {
		return nil, err
	}
	return elements.Workflow, nil
}

// CancelRootWorkflow cancels every enabled or started task in workflowID,
// with its non-terminal work items, and marks the workflow itself
// canceled. Child workflows spawned by its composite tasks are not
// canceled.
func (m *Manager) CancelRootWorkflow(ctx context.Context, workflowID net.ID) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "cancelRootWorkflow", "", "")
	if err != nil {
		return err
	}
	if err := subwf.CascadeCancel(rc, workflowID, workflowID); err != nil {
		rc.Rollback()
		return err
	}
	return rc.Commit()
}

// InitializeWorkflow fires the composite or dynamic-composite task named
// parentTaskName inside parentWorkflowID, spawning its child sub-workflow
// instance (see spec.md §4.7's initializeWorkflow surface for
// sub-workflows, distinct from InitializeRootWorkflow). A composite
// task's "work" is its child instance rather than a work item, so this is
// the engine recursing into its own factory: the context is marked
// internal before reaching subwf.Spawn.
func (m *Manager) InitializeWorkflow(ctx context.Context, parentWorkflowID net.ID, parentTaskName string) (*net.Workflow, error) {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "initializeWorkflow", "", "")
	if err != nil {
		return nil, err
	}
	t, err := rc.Tx().GetTaskByName(ctx, parentWorkflowID, parentTaskName)
	if err != nil {
		rc.Rollback()
		return nil, err
	}
	definitionName, err := compositeDefinitionName(t)
	if err != nil {
		rc.Rollback()
		return nil, err
	}
	child, err := subwf.Spawn(rc.Internal(), t, m, definitionName)
	if err != nil {
		rc.Rollback()
		return nil, err
	}
	if err := rc.Commit(); err != nil {
		return nil, err
	}
	return child, nil
}

// compositeDefinitionName resolves which workflow definition a composite
// task's Spawn should instantiate: the single fixed name for a plain
// composite task, or the dynamic selector's choice for a
// dynamic-composite one.
func compositeDefinitionName(t *net.Task) (string, error) {
	if t.Kind == net.TaskKindDynamicComposite {
		return subwf.ChooseDynamicType(t)
	}
	if len(t.SubWorkflowNames) == 0 {
		return "", errs.New(errs.CodeConfiguration, nil,
			map[string]any{"task": t.Name, "reason": "composite task has no subWorkflowNames"})
	}
	return t.SubWorkflowNames[0], nil
}

// CancelWorkflow cancels the child sub-workflow instance workflowID (see
// spec.md §4.7's cancelWorkflow surface for sub-workflows, distinct from
// CancelRootWorkflow). cancel.Region does not call it: canceling a
// composite task through a cancellation region leaves its child running.
func (m *Manager) CancelWorkflow(ctx context.Context, workflowID net.ID, canceledBy net.ID) error {
	rc, err := ctxrun.Open(ctx, m.store, m.auditStore, "cancelWorkflow", "", "")
	if err != nil {
		return err
	}
	if err := subwf.CascadeCancel(rc, workflowID, canceledBy); err != nil {
		rc.Rollback()
		return err
	}
	return rc.Commit()
}

// CompleteTask completes t (see firing.CompleteTask), then, if t owns a
// cancellation region, cancels it — the owner-termination trigger that
// lets a region's tasks race to the first one to finish.
func (m *Manager) CompleteTask(rc *ctxrun.Context, t *net.Task, payload map[string]any, aggregateID string) error {
	if err := firing.CompleteTask(rc, t, m.router, payload, aggregateID); err != nil {
		return err
	}
	if t.CancellationRegionID != nil {
		if err := cancel.OnOwnerTerminated(rc, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// Router exposes the shared router for callers that need to complete a
// task outside the Manager's own helpers (e.g. a CLI driving a demo run).
func (m *Manager) Router() *firing.Router { return m.router }

// Registry exposes the authorization registry passed at construction.
func (m *Manager) Registry() *authz.Registry { return m.registry }
