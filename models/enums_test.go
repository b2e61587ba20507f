package models

import "testing"

func TestTaskStatusLaneRank_Ordering(t *testing.T) {
	order := []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}
	for i := 1; i < len(order); i++ {
		if order[i-1].LaneRank() >= order[i].LaneRank() {
			t.Fatalf("lane %s must rank before %s", order[i-1], order[i])
		}
	}
	if rank := TaskStatus("BOGUS").LaneRank(); rank <= TaskStatusDone.LaneRank() {
		t.Fatalf("unknown status must sort after known lanes, got rank %d", rank)
	}
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	for _, s := range []TaskStatus{"", "todo", "DELETED"} {
		if s.Valid() {
			t.Fatalf("%q should not be valid", s)
		}
	}
}

func TestValidTaskPriority(t *testing.T) {
	for p := TaskPriorityLow; p <= TaskPriorityHigh; p++ {
		if !ValidTaskPriority(p) {
			t.Fatalf("priority %d should be valid", p)
		}
	}
	if ValidTaskPriority(-1) || ValidTaskPriority(3) {
		t.Fatal("out-of-range priorities should be invalid")
	}
}
