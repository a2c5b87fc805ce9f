package services

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"teamflow/dto"
	"teamflow/model"
)

func testBoard(t *testing.T) *model.Board {
	t.Helper()
	return model.NewBoard("org-1", "", "Engineering", "")
}

func admin(id uint) model.User {
	return model.User{UserID: id, Name: "Admin", OrganizationID: "org-1", Role: model.RoleAdmin}
}

func employee(id uint) model.User {
	return model.User{UserID: id, Name: "Employee", OrganizationID: "org-1", Role: model.RoleEmployee}
}

func mustAddTask(t *testing.T, b *model.Board, columnID, title, priority string, requester model.User, assignee uint) *model.Task {
	t.Helper()
	task, err := AddTask(b, dto.CreateTaskRequest{
		ColumnID:   columnID,
		Title:      title,
		Priority:   priority,
		AssigneeID: assignee,
	}, requester)
	if err != nil {
		t.Fatalf("add task %q: %v", title, err)
	}
	return task
}

// multiset of task ids across all columns
func columnTaskIDs(b *model.Board) map[string]int {
	ids := make(map[string]int)
	for _, column := range b.Columns {
		for _, id := range column.TaskIDs {
			ids[id]++
		}
	}
	return ids
}

func TestNewBoardDefaults(t *testing.T) {
	b := testBoard(t)

	if len(b.Columns) != 5 {
		t.Fatalf("want 5 default columns, got %d", len(b.Columns))
	}
	wantTitles := []string{"New", "In Progress", "Moved to QA", "Done", "Reported"}
	for i, want := range wantTitles {
		if b.Columns[i].Title != want {
			t.Errorf("column %d: want %q, got %q", i, want, b.Columns[i].Title)
		}
	}
	if len(b.Tasks) != 0 || len(b.Sprints) != 0 {
		t.Fatalf("new board should have no tasks or sprints")
	}
}

func TestBoardDocIDDeterministic(t *testing.T) {
	if model.BoardDocID("o1", "") != "o1" {
		t.Fatalf("org-only doc id should be the org id")
	}
	if model.BoardDocID("o1", "p1") != model.BoardDocID("o1", "p1") {
		t.Fatalf("doc id must be deterministic per (org, project)")
	}
	if model.BoardDocID("o1", "p1") == model.BoardDocID("o1", "p2") {
		t.Fatalf("different projects must map to different boards")
	}
}

func TestAddTaskInsertsAtFront(t *testing.T) {
	b := testBoard(t)
	first := mustAddTask(t, b, "new", "first", "", admin(1), 0)
	second := mustAddTask(t, b, "new", "second", "", admin(1), 0)

	column := FindColumn(b, "new")
	if len(column.TaskIDs) != 2 {
		t.Fatalf("want 2 ids in column, got %d", len(column.TaskIDs))
	}
	if column.TaskIDs[0] != second.TaskID || column.TaskIDs[1] != first.TaskID {
		t.Fatalf("newest task must be at the front, got %v", column.TaskIDs)
	}
}

func TestAddTaskDefaultsAssigneeToRequester(t *testing.T) {
	b := testBoard(t)
	task := mustAddTask(t, b, "new", "mine", "", employee(7), 0)
	if task.AssigneeID != 7 {
		t.Fatalf("want assignee 7, got %d", task.AssigneeID)
	}
}

func TestAddTaskEmployeeCannotAssignOthers(t *testing.T) {
	b := testBoard(t)
	_, err := AddTask(b, dto.CreateTaskRequest{ColumnID: "new", Title: "x", AssigneeID: 9}, employee(7))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if len(b.Tasks) != 0 {
		t.Fatalf("rejected create must not leave a task behind")
	}
}

func TestAdjustTaskPartialMerge(t *testing.T) {
	b := testBoard(t)
	task := mustAddTask(t, b, "new", "original", model.PriorityLow, admin(1), 0)

	title := "renamed"
	task2, err := AdjustTask(b, task.TaskID, dto.AdjustTaskRequest{Title: &title}, admin(1))
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if task2.Title != "renamed" {
		t.Fatalf("title not merged: %q", task2.Title)
	}
	if task2.Priority != model.PriorityLow {
		t.Fatalf("untouched field changed: %q", task2.Priority)
	}
}

func TestAdjustTaskEmployeeReassignRejected(t *testing.T) {
	b := testBoard(t)
	task := mustAddTask(t, b, "new", "hers", "", admin(1), 7)

	other := uint(9)
	_, err := AdjustTask(b, task.TaskID, dto.AdjustTaskRequest{AssigneeID: &other}, employee(7))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if FindTask(b, task.TaskID).AssigneeID != 7 {
		t.Fatalf("stored assignee must be unchanged after a rejected update")
	}
}

func TestRemoveTaskPurgesAllColumns(t *testing.T) {
	b := testBoard(t)
	task := mustAddTask(t, b, "new", "doomed", "", admin(1), 0)
	keep := mustAddTask(t, b, "done", "keep", "", admin(1), 0)

	if err := RemoveTask(b, task.TaskID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if FindTask(b, task.TaskID) != nil {
		t.Fatalf("task still on the board")
	}
	ids := columnTaskIDs(b)
	if ids[task.TaskID] != 0 {
		t.Fatalf("task id still referenced by a column")
	}
	if ids[keep.TaskID] != 1 {
		t.Fatalf("unrelated task disturbed")
	}
}

func TestRemoveTaskMissing(t *testing.T) {
	b := testBoard(t)
	if err := RemoveTask(b, "nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("want ErrTaskNotFound, got %v", err)
	}
}

func TestMoveTaskPreservesTaskSet(t *testing.T) {
	b := testBoard(t)
	a := mustAddTask(t, b, "new", "a", "", admin(1), 0)
	mustAddTask(t, b, "new", "b", "", admin(1), 0)
	mustAddTask(t, b, "in-progress", "c", "", admin(1), 0)

	before := columnTaskIDs(b)

	err := MoveTask(b, dto.DropPosition{DroppableID: "new", Index: 1}, &dto.DropPosition{DroppableID: "in-progress", Index: 0}, a.TaskID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	after := columnTaskIDs(b)
	if len(before) != len(after) {
		t.Fatalf("task id multiset changed: before=%v after=%v", before, after)
	}
	for id, n := range before {
		if after[id] != n {
			t.Fatalf("task %s count changed: %d -> %d", id, n, after[id])
		}
	}
	if FindColumn(b, "in-progress").TaskIDs[0] != a.TaskID {
		t.Fatalf("task not inserted at destination index")
	}
}

func TestMoveTaskIgnoresStaleIndex(t *testing.T) {
	b := testBoard(t)
	a := mustAddTask(t, b, "new", "a", "", admin(1), 0)
	target := mustAddTask(t, b, "new", "b", "", admin(1), 0)

	// Client claims index 0, but the task actually sits at index 1 after a
	// concurrent insert. The move must still relocate the right card.
	err := MoveTask(b, dto.DropPosition{DroppableID: "new", Index: 0}, &dto.DropPosition{DroppableID: "done", Index: 0}, a.TaskID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if FindColumn(b, "done").TaskIDs[0] != a.TaskID {
		t.Fatalf("moved the wrong card")
	}
	if FindColumn(b, "new").TaskIDs[0] != target.TaskID {
		t.Fatalf("remaining card disturbed")
	}
}

func TestMoveTaskClampsDestinationIndex(t *testing.T) {
	b := testBoard(t)
	a := mustAddTask(t, b, "new", "a", "", admin(1), 0)

	err := MoveTask(b, dto.DropPosition{DroppableID: "new", Index: 0}, &dto.DropPosition{DroppableID: "done", Index: 99}, a.TaskID)
	if err != nil {
		t.Fatalf("move with oversized index: %v", err)
	}
	done := FindColumn(b, "done")
	if len(done.TaskIDs) != 1 || done.TaskIDs[0] != a.TaskID {
		t.Fatalf("index not clamped, got %v", done.TaskIDs)
	}
}

func TestMoveTaskDroppedOutside(t *testing.T) {
	b := testBoard(t)
	a := mustAddTask(t, b, "new", "a", "", admin(1), 0)
	mustAddTask(t, b, "new", "b", "", admin(1), 0)

	filedBefore := 0
	for _, n := range columnTaskIDs(b) {
		filedBefore += n
	}

	err := MoveTask(b, dto.DropPosition{DroppableID: "new", Index: 1}, nil, a.TaskID)
	if err != nil {
		t.Fatalf("move outside: %v", err)
	}

	filedAfter := 0
	for _, n := range columnTaskIDs(b) {
		filedAfter += n
	}
	if filedAfter != filedBefore-1 {
		t.Fatalf("want filed count to drop by one, before=%d after=%d", filedBefore, filedAfter)
	}
	if FindTask(b, a.TaskID) == nil {
		t.Fatalf("task must remain on the board")
	}
	unfiled := UnfiledTaskIDs(b)
	if len(unfiled) != 1 || unfiled[0] != a.TaskID {
		t.Fatalf("unfiled = %v, want just %s", unfiled, a.TaskID)
	}
}

func TestMoveTaskValidatesBeforeMutating(t *testing.T) {
	b := testBoard(t)
	a := mustAddTask(t, b, "new", "a", "", admin(1), 0)

	err := MoveTask(b, dto.DropPosition{DroppableID: "new", Index: 0}, &dto.DropPosition{DroppableID: "ghost", Index: 0}, a.TaskID)
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("want ErrColumnNotFound, got %v", err)
	}
	if len(FindColumn(b, "new").TaskIDs) != 1 {
		t.Fatalf("rejected move must not remove the card from its source column")
	}
}

func TestReorderColumns(t *testing.T) {
	b := testBoard(t)
	if err := ReorderColumns(b, 0, 2); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got := []string{b.Columns[0].ColumnID, b.Columns[1].ColumnID, b.Columns[2].ColumnID}
	want := []string{"in-progress", "qa", "new"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column order = %v, want %v", got, want)
		}
	}

	if err := ReorderColumns(b, 99, 0); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("out-of-range reorder should fail, got %v", err)
	}
}

func TestSingleActiveSprintInvariant(t *testing.T) {
	b := testBoard(t)
	now := time.Now()

	countActive := func() int {
		n := 0
		for _, s := range b.Sprints {
			if s.Active {
				n++
			}
		}
		return n
	}

	s1 := AddSprint(b, dto.CreateSprintRequest{Name: "Sprint 1", StartDate: now, EndDate: now.Add(14 * 24 * time.Hour), Active: true})
	if countActive() != 1 {
		t.Fatalf("after first activation: %d active", countActive())
	}

	AddSprint(b, dto.CreateSprintRequest{Name: "Sprint 2", StartDate: now, EndDate: now.Add(14 * 24 * time.Hour), Active: true})
	if countActive() != 1 {
		t.Fatalf("after second activation: %d active", countActive())
	}
	if FindSprint(b, s1.SprintID).Active {
		t.Fatalf("first sprint should have been deactivated")
	}

	s3 := AddSprint(b, dto.CreateSprintRequest{Name: "Sprint 3", StartDate: now, EndDate: now.Add(14 * 24 * time.Hour)})
	if countActive() != 1 {
		t.Fatalf("inactive create changed active count: %d", countActive())
	}

	active := true
	if _, err := AdjustSprint(b, s3.SprintID, dto.AdjustSprintRequest{Active: &active}); err != nil {
		t.Fatalf("activate via update: %v", err)
	}
	if countActive() != 1 {
		t.Fatalf("after update activation: %d active", countActive())
	}
	if !FindSprint(b, s3.SprintID).Active {
		t.Fatalf("updated sprint should be the active one")
	}

	inactive := false
	if _, err := AdjustSprint(b, s3.SprintID, dto.AdjustSprintRequest{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if countActive() != 0 {
		t.Fatalf("after deactivation: %d active", countActive())
	}
}

func TestAdjustSprintNotFound(t *testing.T) {
	b := testBoard(t)
	if _, err := AdjustSprint(b, "missing", dto.AdjustSprintRequest{}); !errors.Is(err, ErrSprintNotFound) {
		t.Fatalf("want ErrSprintNotFound, got %v", err)
	}
}

func TestComments(t *testing.T) {
	b := testBoard(t)
	task := mustAddTask(t, b, "new", "discuss", "", admin(1), 0)

	comment, err := AddComment(b, task.TaskID, 7, "looks good")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.CommentID == "" || comment.CreatedAt.IsZero() {
		t.Fatalf("comment must get a generated id and timestamp")
	}
	if comment.AuthorID != 7 {
		t.Fatalf("author = %d, want 7", comment.AuthorID)
	}

	if err := RemoveComment(b, task.TaskID, comment.CommentID); err != nil {
		t.Fatalf("remove comment: %v", err)
	}
	if len(FindTask(b, task.TaskID).Comments) != 0 {
		t.Fatalf("comment not removed")
	}

	// absent id is a no-op
	if err := RemoveComment(b, task.TaskID, "already-gone"); err != nil {
		t.Fatalf("removing an absent comment should succeed: %v", err)
	}
}

func TestVisibleBoardForcesEmployeeFilter(t *testing.T) {
	b := testBoard(t)
	mine := mustAddTask(t, b, "new", "mine", "", admin(1), 7)
	mustAddTask(t, b, "new", "theirs", "", admin(1), 9)

	// Employee asks to see user 9's tasks; the filter is forced back to 7.
	projection := VisibleBoard(b, employee(7), 9, "")
	if len(projection.Tasks) != 1 || projection.Tasks[0].TaskID != mine.TaskID {
		t.Fatalf("employee must only ever see their own tasks, got %d", len(projection.Tasks))
	}
	if got := projection.Columns[0].TaskIDs; len(got) != 1 || got[0] != mine.TaskID {
		t.Fatalf("column ids not rewritten to visible subset: %v", got)
	}
}

func TestVisibleBoardAdminFilters(t *testing.T) {
	b := testBoard(t)
	mustAddTask(t, b, "new", "for7", "", admin(1), 7)
	mustAddTask(t, b, "new", "for9", "", admin(1), 9)

	all := VisibleBoard(b, admin(1), 0, "")
	if len(all.Tasks) != 2 {
		t.Fatalf("admin with no filter sees everything, got %d", len(all.Tasks))
	}

	scoped := VisibleBoard(b, admin(1), 9, "")
	if len(scoped.Tasks) != 1 || scoped.Tasks[0].AssigneeID != 9 {
		t.Fatalf("admin assignee filter not applied")
	}
}

func TestVisibleBoardSprintFilter(t *testing.T) {
	b := testBoard(t)
	sprint := AddSprint(b, dto.CreateSprintRequest{Name: "S", StartDate: time.Now(), EndDate: time.Now().Add(time.Hour), Active: true})

	inSprint, err := AddTask(b, dto.CreateTaskRequest{ColumnID: "new", Title: "in", SprintID: sprint.SprintID}, admin(1))
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	mustAddTask(t, b, "new", "out", "", admin(1), 0)

	projection := VisibleBoard(b, admin(1), 0, sprint.SprintID)
	if len(projection.Tasks) != 1 || projection.Tasks[0].TaskID != inSprint.TaskID {
		t.Fatalf("sprint filter not applied")
	}
}

func TestVisibleBoardNeverMutatesStorage(t *testing.T) {
	b := testBoard(t)
	mustAddTask(t, b, "new", "for7", "", admin(1), 7)
	mustAddTask(t, b, "in-progress", "for9", "", admin(1), 9)

	before, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	VisibleBoard(b, admin(1), 0, "")
	VisibleBoard(b, employee(7), 0, "")

	after, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("stored board changed across reads:\nbefore: %s\nafter:  %s", before, after)
	}
}

// End-to-end aggregate scenario: create, extend, populate, move, then view
// the board as both an employee and an admin.
func TestBoardScenario(t *testing.T) {
	b := model.NewBoard("O1", "", "Engineering", "")

	review := AddColumn(b, "Review")

	task, err := AddTask(b, dto.CreateTaskRequest{
		ColumnID:   "new",
		Title:      "Fix bug",
		Priority:   model.PriorityHigh,
		AssigneeID: 7,
	}, admin(1))
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	err = MoveTask(b, dto.DropPosition{DroppableID: "new", Index: 0}, &dto.DropPosition{DroppableID: review.ColumnID, Index: 0}, task.TaskID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	assertOneTaskInReview := func(p model.Board, who string) {
		t.Helper()
		if len(p.Tasks) != 1 || p.Tasks[0].TaskID != task.TaskID {
			t.Fatalf("%s: want exactly one visible task, got %d", who, len(p.Tasks))
		}
		var location string
		for _, column := range p.Columns {
			for _, id := range column.TaskIDs {
				if id == task.TaskID {
					location = column.Title
				}
			}
		}
		if location != "Review" {
			t.Fatalf("%s: task in column %q, want Review", who, location)
		}
	}

	viewer := model.User{UserID: 7, OrganizationID: "O1", Role: model.RoleEmployee}
	boss := model.User{UserID: 1, OrganizationID: "O1", Role: model.RoleAdmin}
	assertOneTaskInReview(VisibleBoard(b, viewer, 0, ""), "employee")
	assertOneTaskInReview(VisibleBoard(b, boss, 0, ""), "admin")
}

func TestUnfiledTaskIDsEmptyWhenAllFiled(t *testing.T) {
	b := testBoard(t)
	mustAddTask(t, b, "new", "a", "", admin(1), 0)
	mustAddTask(t, b, "done", "b", "", admin(1), 0)

	if unfiled := UnfiledTaskIDs(b); len(unfiled) != 0 {
		sort.Strings(unfiled)
		t.Fatalf("want no unfiled tasks, got %v", unfiled)
	}
}
