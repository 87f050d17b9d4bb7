package version

// Structure is the read-only projection of a Definition exposed by the
// structure query API: every condition/task name, how they connect, and
// which cancellation regions exist — enough to render a diagram or drive
// a validation tool without touching a running instance.
type Structure struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Deprecated bool              `json:"deprecated"`
	Conditions []ConditionStruct `json:"conditions"`
	Tasks      []TaskStruct      `json:"tasks"`
	Edges      []EdgeStruct      `json:"edges"`
	Regions    []RegionStruct    `json:"cancellationRegions"`
}

type ConditionStruct struct {
	Name    string `json:"name"`
	IsStart bool   `json:"isStart,omitempty"`
	IsEnd   bool   `json:"isEnd,omitempty"`
}

type TaskStruct struct {
	Name             string   `json:"name"`
	Kind             string   `json:"kind"`
	JoinType         string   `json:"joinType"`
	SplitType        string   `json:"splitType"`
	HasRouter        bool     `json:"hasRouter,omitempty"`
	SubWorkflowNames []string `json:"subWorkflowNames,omitempty"`
}

type EdgeStruct struct {
	Kind string `json:"kind"`
	From string `json:"from"`
	To   string `json:"to"`
}

type RegionStruct struct {
	OwnerName      string   `json:"ownerName"`
	TaskNames      []string `json:"taskNames,omitempty"`
	ConditionNames []string `json:"conditionNames,omitempty"`
}

// Structure projects def into the read-only query shape.
func (m *Manager) Structure(name, ver string) (*Structure, error) {
	def, err := m.get(name, ver)
	if err != nil {
		return nil, err
	}
	return structureOf(def), nil
}

func structureOf(def *Definition) *Structure {
	s := &Structure{Name: def.Name, Version: def.Version, Deprecated: def.Deprecated}
	for _, c := range def.Conditions {
		s.Conditions = append(s.Conditions, ConditionStruct{Name: c.Name, IsStart: c.IsStart, IsEnd: c.IsEnd})
	}
	for _, t := range def.Tasks {
		s.Tasks = append(s.Tasks, TaskStruct{
			Name: t.Name, Kind: string(t.Kind), JoinType: string(t.JoinType), SplitType: string(t.SplitType),
			HasRouter: t.RouterExpr != nil, SubWorkflowNames: t.SubWorkflowNames,
		})
	}
	for _, e := range def.Edges {
		s.Edges = append(s.Edges, EdgeStruct{Kind: string(e.Kind), From: e.From, To: e.To})
	}
	for _, r := range def.Regions {
		s.Regions = append(s.Regions, RegionStruct{OwnerName: r.OwnerName, TaskNames: r.TaskNames, ConditionNames: r.ConditionNames})
	}
	return s
}
