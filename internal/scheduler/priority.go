package scheduler

// Less reports whether a ranks strictly higher than b: greater pain count
// first, ties broken by lexicographically smaller id. The id tie-break is
// fixed and reproducible but says nothing about creation order, since ids are
// random.
func Less(a, b *Task) bool {
	if a.Pain != b.Pain {
		return a.Pain > b.Pain
	}
	return a.ID < b.ID
}

// Best returns the single highest-priority task. Pure function. The input
// must be non-empty; passing an empty set is a caller error and yields nil.
func Best(tasks []*Task) *Task {
	var best *Task
	for _, t := range tasks {
		if best == nil || Less(t, best) {
			best = t
		}
	}
	return best
}

// headOfQueue returns the open task with the lexicographically smallest id,
// or nil when no open task exists. This is the skip-penalty reference point.
// It deliberately ignores pain counts: the head of queue is a fixed anchor,
// not the most urgent task.
func headOfQueue(tasks []*Task) *Task {
	var head *Task
	for _, t := range tasks {
		if t.Status != StatusOpen {
			continue
		}
		if head == nil || t.ID < head.ID {
			head = t
		}
	}
	return head
}
