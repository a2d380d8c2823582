// Package core implements the recurring-task engine shared by chores and
// routines.
//
// # Components
//
// The package is organized around a few small pieces:
//
//   - Recurrence calendar: pure functions mapping a recurrence pattern and
//     anchor date to occurrence predicates and next/previous occurrence
//     dates (recurrence.go). No I/O.
//
//   - Status calculation: derives a task's display status (overdue, due
//     today, due tomorrow, upcoming, completed) from its recurrence, active
//     flag, and most recent completion (status.go). Deterministic in
//     (task, completion, today).
//
//   - Engine: orchestrates validation, id and timestamp assignment, child
//     collection normalization, and completion tracking over an injected
//     Storage and Clock (engine.go).
//
// # Task model
//
// Chores and routines share one Task shape and differ only in their child
// collection: a chore is assigned to family members, a routine carries an
// ordered list of steps. Child collections are replaced wholesale on every
// write so a task can never hold orphaned children.
//
// # Errors
//
// Writes fail with *ValidationError (field-keyed detail map), ErrNotFound
// (absent or foreign-account id), or ErrInvalidReference (a child id
// crossing the account boundary). None are retryable; a rejected write
// leaves prior state untouched.
package core
