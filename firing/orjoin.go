package firing

import (
	"context"

	"github.com/yawlrun/yawlrun/net"
)

// orJoinReady implements the OR-join witness policy: wait for all tokens
// that the originating OR-split's witness set might still deliver. A
// witness set is every input condition of the OR-join; an input is
// "still pending" if it is unmarked and some upstream task feeding it
// could still fire (it is enabled or already started). The join is ready
// once every input is either marked or structurally dead (no upstream
// task can ever mark it).
func orJoinReady(ctx context.Context, tx txReader, conds []*net.Condition) (bool, error) {
	anyMarked := false
	for _, c := range conds {
		if c.Marking >= 1 {
			anyMarked = true
			continue
		}
		pending, err := hasPendingProducer(ctx, tx, c.ID)
		if err != nil {
			return false, err
		}
		if pending {
			return false, nil
		}
	}
	return anyMarked, nil
}

// hasPendingProducer reports whether any task upstream of condition id is
// enabled or started — i.e. could still deposit a token into it.
func hasPendingProducer(ctx context.Context, tx txReader, conditionID net.ID) (bool, error) {
	tasks, err := tx.UpstreamTasksOf(ctx, conditionID)
	if err != nil {
		return false, err
	}
	for _, t := range tasks {
		if t.State == net.TaskEnabled || t.State == net.TaskStarted {
			return true, nil
		}
	}
	return false, nil
}
