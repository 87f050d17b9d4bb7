package net

// Clone returns a deep copy of w safe to hand across transaction
// boundaries without aliasing the original.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	cp := *w
	if w.StartedAt != nil {
		t := *w.StartedAt
		cp.StartedAt = &t
	}
	if w.TerminatedAt != nil {
		t := *w.TerminatedAt
		cp.TerminatedAt = &t
	}
	return &cp
}

// Clone returns a deep copy of c.
func (c *Condition) Clone() *Condition {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.RouterExpr != nil {
		v := *t.RouterExpr
		cp.RouterExpr = &v
	}
	if t.WorkItemTemplate != nil {
		wt := *t.WorkItemTemplate
		cp.WorkItemTemplate = &wt
	}
	if t.SubWorkflowNames != nil {
		cp.SubWorkflowNames = append([]string(nil), t.SubWorkflowNames...)
	}
	if t.CancellationRegionID != nil {
		id := *t.CancellationRegionID
		cp.CancellationRegionID = &id
	}
	return &cp
}

// Clone returns a deep copy of wi.
func (wi *WorkItem) Clone() *WorkItem {
	if wi == nil {
		return nil
	}
	cp := *wi
	if wi.Payload != nil {
		payload := make(map[string]any, len(wi.Payload))
		for k, v := range wi.Payload {
			payload[k] = v
		}
		cp.Payload = payload
	}
	if wi.AggregateID != nil {
		v := *wi.AggregateID
		cp.AggregateID = &v
	}
	if wi.Priority != nil {
		v := *wi.Priority
		cp.Priority = &v
	}
	if wi.StartedAt != nil {
		v := *wi.StartedAt
		cp.StartedAt = &v
	}
	if wi.CompletedAt != nil {
		v := *wi.CompletedAt
		cp.CompletedAt = &v
	}
	if wi.CanceledBy != nil {
		v := *wi.CanceledBy
		cp.CanceledBy = &v
	}
	return &cp
}

// Clone returns a deep copy of e.
func (e *FlowEdge) Clone() *FlowEdge {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// Clone returns a deep copy of r.
func (r *CancellationRegion) Clone() *CancellationRegion {
	if r == nil {
		return nil
	}
	cp := *r
	cp.TaskIDs = append([]ID(nil), r.TaskIDs...)
	cp.ConditionIDs = append([]ID(nil), r.ConditionIDs...)
	return &cp
}
