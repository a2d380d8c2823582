package core

import (
	"time"
)

// ComputeStatus derives a task's display status from its recurrence, the most
// recent completion, and today's date. It is a pure function: replaying it
// for any historical day with the same inputs gives the same answer.
//
// A completion satisfies the occurrence whose window it falls in (the
// half-open interval from that occurrence to the next one). The task reads
// "completed" on the occurrence day itself; afterwards the satisfied window
// rolls forward and the next occurrence drives the status. An occurrence
// left unsatisfied keeps the task overdue until a later completion, with one
// exception: when consecutive occurrences are on adjacent days only the
// freshest missed day counts, so a weekly task missed last Monday shows
// due_today again on the next Monday while a daily task missed yesterday is
// overdue even though today is also an occurrence.
//
// CUSTOM tasks never go overdue. The engine cannot evaluate the expression,
// so every in-range day stands alone: due_today until completed, completed
// for the rest of that day.
func ComputeStatus(task *Task, mostRecent *Completion, today time.Time) Status {
	today = DateOnly(today)

	if !task.IsActive {
		return Status{State: StatusInactive}
	}

	anchor := DateOnly(task.StartDate)

	if task.Recurrence == RecurrenceCustom {
		return customStatus(task, mostRecent, today, anchor)
	}

	last, hasLast := PreviousOccurrenceOnOrBefore(task.Recurrence, anchor, task.EndDate, today)
	if !hasLast {
		// Task starts in the future.
		next, ok := NextOccurrenceOnOrAfter(task.Recurrence, anchor, task.EndDate, today)
		if !ok {
			// Start and end dates admit no occurrence at all.
			return Status{State: StatusInactive}
		}
		return nextStatus(today, next)
	}

	next, hasNext := NextOccurrenceOnOrAfter(task.Recurrence, anchor, task.EndDate, last.AddDate(0, 0, 1))

	if completionInWindow(mostRecent, last, next, hasNext) {
		if today.Equal(last) || !hasNext {
			return Status{State: StatusCompleted}
		}
		return nextStatus(today, next)
	}

	if last.Before(today) {
		return Status{State: StatusOverdue}
	}

	// today is itself an occurrence. If yesterday was one too and went
	// unsatisfied, the task is already overdue.
	yesterday := today.AddDate(0, 0, -1)
	if OccursOn(task.Recurrence, anchor, task.EndDate, yesterday) && !completedOnOrAfter(mostRecent, yesterday) {
		return Status{State: StatusOverdue}
	}

	return Status{State: StatusDueToday}
}

func customStatus(task *Task, mostRecent *Completion, today, anchor time.Time) Status {
	if task.EndDate != nil && today.After(DateOnly(*task.EndDate)) {
		return Status{State: StatusInactive}
	}
	if today.Before(anchor) {
		return nextStatus(today, anchor)
	}
	if completedOnOrAfter(mostRecent, today) {
		return Status{State: StatusCompleted}
	}
	return Status{State: StatusDueToday}
}

// completionInWindow reports whether the completion date falls inside the
// half-open window [last, next).
func completionInWindow(c *Completion, last time.Time, next time.Time, hasNext bool) bool {
	if c == nil {
		return false
	}
	d := DateOnly(c.CompletedAt)
	if d.Before(last) {
		return false
	}
	return !hasNext || d.Before(next)
}

func completedOnOrAfter(c *Completion, day time.Time) bool {
	return c != nil && !DateOnly(c.CompletedAt).Before(day)
}

func nextStatus(today, next time.Time) Status {
	if next.Equal(today.AddDate(0, 0, 1)) {
		return Status{State: StatusDueTomorrow, Date: &next}
	}
	return Status{State: StatusUpcoming, Date: &next}
}
