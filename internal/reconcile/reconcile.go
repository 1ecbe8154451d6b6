// Package reconcile computes the mutation plan for replacing a persisted
// sibling collection (a board's columns, a task's subtasks) with a desired
// list submitted by a client. It never touches storage; services apply the
// resulting plan inside a transaction.
package reconcile

import (
	"github.com/google/uuid"
)

// Ref tags one entry of a desired child list as either an already persisted
// row or a row the client added in the form and has not saved yet.
type Ref struct {
	ID      uuid.UUID
	Pending bool
}

// Existing references a persisted row by id.
func Existing(id uuid.UUID) Ref {
	return Ref{ID: id}
}

// Pending marks a row that has no identity until it is created.
func Pending() Ref {
	return Ref{Pending: true}
}

// Item is one entry of the desired list: a ref plus the submitted field values.
type Item[T any] struct {
	Ref   Ref
	Value T
}

// Create is a row to insert, Position its final order among siblings.
type Create[T any] struct {
	Value    T
	Position int
}

// Update carries new field values and the final position for a persisted row.
type Update[T any] struct {
	ID       uuid.UUID
	Value    T
	Position int
}

// Plan is the three-way diff between the persisted children and the desired
// list. The three sets are pairwise disjoint.
type Plan[T any] struct {
	Creates []Create[T]
	Updates []Update[T]
	Deletes []uuid.UUID
}

// Diff reconciles the desired list against the ids currently persisted under
// the same parent. Desired items tagged pending, or whose id is unknown, become
// creates; items whose id is present become updates; existing ids absent from
// the desired list become deletes. Every surviving item's position is its index
// in the desired list, so positions come out unique and ascending.
//
// A desired list that repeats an existing id is a caller error. Diff stays
// deterministic anyway: the last occurrence's values and position win and a
// single update is emitted for that id.
func Diff[T any](existing []uuid.UUID, desired []Item[T]) Plan[T] {
	existingSet := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	var plan Plan[T]
	updateIdx := make(map[uuid.UUID]int, len(desired))

	for pos, item := range desired {
		if !item.Ref.Pending {
			if _, ok := existingSet[item.Ref.ID]; ok {
				upd := Update[T]{ID: item.Ref.ID, Value: item.Value, Position: pos}
				if i, seen := updateIdx[item.Ref.ID]; seen {
					plan.Updates[i] = upd
					continue
				}
				updateIdx[item.Ref.ID] = len(plan.Updates)
				plan.Updates = append(plan.Updates, upd)
				continue
			}
		}
		plan.Creates = append(plan.Creates, Create[T]{Value: item.Value, Position: pos})
	}

	for _, id := range existing {
		if _, kept := updateIdx[id]; !kept {
			plan.Deletes = append(plan.Deletes, id)
		}
	}

	return plan
}

// AppendPositions assigns positions to a batch appended after the current
// siblings: next is the first free position (0 for an empty sibling set).
func AppendPositions(next, count int) []int {
	positions := make([]int, count)
	for i := range positions {
		positions[i] = next + i
	}
	return positions
}
