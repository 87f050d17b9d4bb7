// Package testfixtures collects the marking-store/audit-store/run-context
// scaffolding every engine package's tests otherwise hand-assemble, plus a
// handful of common net shapes (a linear AND net, an XOR-split pair of
// branches) so individual _test.go files can focus on the behavior under
// test instead of on wiring.
package testfixtures

import (
	"testing"

	"github.com/stretchr/testify/require"

	auditmem "github.com/yawlrun/yawlrun/audit/memstore"
	"github.com/yawlrun/yawlrun/ctxrun"
	markingmem "github.com/yawlrun/yawlrun/marking/memstore"
)

// Harness bundles the in-memory stores a test needs to open a run context.
type Harness struct {
	Marking *markingmem.Store
	Audit   *auditmem.Store
}

// NewHarness returns a Harness backed by fresh in-memory stores.
func NewHarness() *Harness {
	return &Harness{Marking: markingmem.NewStore(), Audit: auditmem.NewStore()}
}

// Open begins a run context against the harness's stores.
func (h *Harness) Open(t *testing.T, operation, workflowName, workflowVersion string) *ctxrun.Context {
	t.Helper()
	rc, err := ctxrun.Open(t.Context(), h.Marking, h.Audit, operation, workflowName, workflowVersion)
	require.NoError(t, err)
	return rc
}
