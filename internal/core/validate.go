package core

// ValidateDefinition checks a task definition against the field invariants.
// It returns nil when the definition is valid. Referential checks (member
// ids belonging to the account) happen later, inside the storage
// transaction.
func ValidateDefinition(def *TaskDefinition) error {
	ve := NewValidationError()

	switch def.Kind {
	case KindChore:
		if len(NormalizeAssignees(def.FamilyMemberIDs)) == 0 {
			ve.Add("family_member_ids", "a chore must be assigned to at least one family member")
		}
		if len(def.Steps) > 0 {
			ve.Add("steps", "steps apply only to routines")
		}
	case KindRoutine:
		// An empty step list is allowed: it represents a routine still
		// being drafted.
		if len(def.FamilyMemberIDs) > 0 {
			ve.Add("family_member_ids", "assignments apply only to chores")
		}
		if def.Priority != nil {
			ve.Add("priority", "priority applies only to chores")
		}
	default:
		ve.Add("kind", "kind must be chore or routine")
	}

	if def.Name == "" {
		ve.Add("name", "name is required")
	}

	if !validRecurrences[def.Recurrence] {
		ve.Add("recurrence", "unknown recurrence pattern")
	}
	if def.Recurrence == RecurrenceCustom && def.CustomRecurrenceExpr == "" {
		ve.Add("custom_recurrence_expr", "required for CUSTOM recurrence")
	}
	if def.Recurrence != RecurrenceCustom && def.CustomRecurrenceExpr != "" {
		ve.Add("custom_recurrence_expr", "only valid for CUSTOM recurrence")
	}

	if def.StartDate.IsZero() {
		ve.Add("start_date", "start date is required")
	}
	if def.EndDate != nil && DateOnly(*def.EndDate).Before(DateOnly(def.StartDate)) {
		ve.Add("end_date", "end date must be on or after start date")
	}

	if def.EstimatedMinutes < 0 {
		ve.Add("estimated_minutes", "must not be negative")
	}
	for _, s := range def.Steps {
		if s.EstimatedMinutes < 0 {
			ve.Add("steps", "step estimated minutes must not be negative")
			break
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
