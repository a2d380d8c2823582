package core

// Child-collection normalization. The stored child set is always derived
// from the caller's input wholesale: duplicates collapse, caller-supplied
// step orderings are ignored in favor of the input list's order.

// NormalizeAssignees deduplicates family member ids, preserving first-seen
// order. Empty entries are dropped.
func NormalizeAssignees(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// NormalizeSteps converts step definitions into routine steps with a dense
// 0..n-1 position sequence in input order. Ids are passed through so the
// storage layer can preserve the identity of steps that already exist.
func NormalizeSteps(taskID string, defs []StepDefinition) []RoutineStep {
	steps := make([]RoutineStep, 0, len(defs))
	for i, d := range defs {
		steps = append(steps, RoutineStep{
			ID:               d.ID,
			TaskID:           taskID,
			Position:         i,
			Description:      d.Description,
			EstimatedMinutes: d.EstimatedMinutes,
		})
	}
	return steps
}
