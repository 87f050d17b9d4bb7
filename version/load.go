package version

import (
	"encoding/json"

	"github.com/goccy/go-yaml"

	"github.com/yawlrun/yawlrun/errs"
	"github.com/yawlrun/yawlrun/net"
)

// docCondition/docTask/docEdge/docRegion mirror
// ConditionSpec/TaskSpec/EdgeSpec/RegionSpec with plain string fields for
// JSON/YAML unmarshaling; net.TaskKind/net.JoinType/net.SplitType and the
// *string RouterExpr aren't directly round-trippable through the same
// struct tags used in Go-authored Definitions.
type workflowDoc struct {
	Name       string        `json:"name" yaml:"name"`
	Version    string        `json:"version" yaml:"version"`
	Deprecated bool          `json:"deprecated" yaml:"deprecated"`
	Conditions []docCondition `json:"conditions" yaml:"conditions"`
	Tasks      []docTask      `json:"tasks" yaml:"tasks"`
	Edges      []docEdge      `json:"edges" yaml:"edges"`
	Regions    []docRegion    `json:"cancellationRegions" yaml:"cancellationRegions"`
}

type docCondition struct {
	Name    string `json:"name" yaml:"name"`
	IsStart bool   `json:"isStart" yaml:"isStart"`
	IsEnd   bool   `json:"isEnd" yaml:"isEnd"`
}

type docTask struct {
	Name             string                `json:"name" yaml:"name"`
	Type             string                `json:"type" yaml:"type"`
	JoinType         string                `json:"joinType" yaml:"joinType"`
	SplitType        string                `json:"splitType" yaml:"splitType"`
	RouterExpr       string                `json:"routerExpr" yaml:"routerExpr"`
	SubWorkflowNames []string              `json:"subWorkflowNames" yaml:"subWorkflowNames"`
	WorkItemTemplate *docWorkItemTemplate  `json:"workItemTemplate" yaml:"workItemTemplate"`
}

type docWorkItemTemplate struct {
	AutoTrigger     bool   `json:"autoTrigger" yaml:"autoTrigger"`
	OfferKind       string `json:"offerKind" yaml:"offerKind"`
	RequiredScope   string `json:"requiredScope" yaml:"requiredScope"`
	RequiredGroupID string `json:"requiredGroupId" yaml:"requiredGroupId"`
}

type docEdge struct {
	Kind string `json:"kind" yaml:"kind"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

type docRegion struct {
	OwnerName      string   `json:"ownerName" yaml:"ownerName"`
	TaskNames      []string `json:"taskNames" yaml:"taskNames"`
	ConditionNames []string `json:"conditionNames" yaml:"conditionNames"`
}

// LoadJSON parses raw JSON bytes into a validated Definition.
func LoadJSON(raw []byte) (*Definition, error) {
	var doc workflowDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.New(errs.CodeConfiguration, err, nil)
	}
	return buildFromDoc(&doc)
}

// LoadYAML parses raw YAML bytes into a validated Definition.
func LoadYAML(raw []byte) (*Definition, error) {
	var doc workflowDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errs.New(errs.CodeConfiguration, err, nil)
	}
	return buildFromDoc(&doc)
}

func buildFromDoc(doc *workflowDoc) (*Definition, error) {
	b := NewBuilder(doc.Name, doc.Version)
	for _, c := range doc.Conditions {
		b.Condition(c.Name, c.IsStart, c.IsEnd)
	}
	for _, t := range doc.Tasks {
		spec := TaskSpec{
			Name: t.Name, Kind: net.TaskKind(t.Type),
			JoinType: net.JoinType(t.JoinType), SplitType: net.SplitType(t.SplitType),
			SubWorkflowNames: t.SubWorkflowNames,
		}
		if t.RouterExpr != "" {
			expr := t.RouterExpr
			spec.RouterExpr = &expr
		}
		if t.WorkItemTemplate != nil {
			spec.WorkItemTemplate = &net.WorkItemTemplate{
				AutoTrigger: t.WorkItemTemplate.AutoTrigger,
				DefaultOffer: net.Offer{
					Kind:          net.OfferKind(t.WorkItemTemplate.OfferKind),
					RequiredScope: t.WorkItemTemplate.RequiredScope,
					RequiredGroup: t.WorkItemTemplate.RequiredGroupID,
				},
			}
		}
		b.Task(spec)
	}
	for _, e := range doc.Edges {
		b.Edge(net.FlowKind(e.Kind), e.From, e.To)
	}
	for _, r := range doc.Regions {
		b.CancellationRegion(r.OwnerName, r.TaskNames, r.ConditionNames)
	}
	if doc.Deprecated {
		b.Deprecate()
	}
	return b.Build()
}
