// Package queue - helpers.go
// Small internal helpers kept separate to keep registry.go focused.
package queue

import "time"

// snapshot returns a deep copy of q so it can leave the entry lock.
func snapshot(q *Queue) Queue {
	cp := *q
	cp.Players = append([]string{}, q.Players...)
	cp.ActiveTesters = append([]string{}, q.ActiveTesters...)
	cp.OpenedAt = copyTime(q.OpenedAt)
	cp.LastOpenedAt = copyTime(q.LastOpenedAt)
	cp.ClosedAt = copyTime(q.ClosedAt)
	return cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// indexOf returns the position of id in ids or -1.
func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// uniq drops empty and repeated ids keeping first occurrences.
func uniq(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
