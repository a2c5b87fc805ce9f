package services

import (
	"fmt"
	"time"

	"teamflow/dto"
	"teamflow/model"

	"github.com/google/uuid"
)

// Board aggregate operations. Everything in this file mutates (or projects)
// an in-memory board only; persistence happens in boardstore.go. All
// authorization and existence checks run before the first mutation so a
// rejected request leaves the board untouched.

func FindColumn(b *model.Board, columnID string) *model.Column {
	for i := range b.Columns {
		if b.Columns[i].ColumnID == columnID {
			return &b.Columns[i]
		}
	}
	return nil
}

func FindTask(b *model.Board, taskID string) *model.Task {
	for i := range b.Tasks {
		if b.Tasks[i].TaskID == taskID {
			return &b.Tasks[i]
		}
	}
	return nil
}

func FindSprint(b *model.Board, sprintID string) *model.Sprint {
	for i := range b.Sprints {
		if b.Sprints[i].SprintID == sprintID {
			return &b.Sprints[i]
		}
	}
	return nil
}

// ActiveSprint returns the board's single active sprint, or nil.
func ActiveSprint(b *model.Board) *model.Sprint {
	for i := range b.Sprints {
		if b.Sprints[i].Active {
			return &b.Sprints[i]
		}
	}
	return nil
}

// AddTask creates a task from the request and inserts its id at the front of
// the target column, so the newest work surfaces first. Employees may only
// assign tasks to themselves; an unset assignee defaults to the requester.
func AddTask(b *model.Board, req dto.CreateTaskRequest, requester model.User) (*model.Task, error) {
	column := FindColumn(b, req.ColumnID)
	if column == nil {
		return nil, ErrColumnNotFound
	}

	assignee := req.AssigneeID
	if assignee == 0 {
		assignee = requester.UserID
	}
	if !requester.Privileged() && assignee != requester.UserID {
		return nil, fmt.Errorf("%w: you can only assign tasks to yourself", ErrForbidden)
	}
	if req.SprintID != "" && FindSprint(b, req.SprintID) == nil {
		return nil, ErrSprintNotFound
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	task := model.Task{
		TaskID:      uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  assignee,
		Priority:    priority,
		Labels:      req.Labels,
		DueDate:     req.DueDate,
		SprintID:    req.SprintID,
		CreatedBy:   requester.UserID,
		CreatedAt:   time.Now(),
		Comments:    []model.Comment{},
	}

	b.Tasks = append(b.Tasks, task)
	column.TaskIDs = append([]string{task.TaskID}, column.TaskIDs...)
	return &b.Tasks[len(b.Tasks)-1], nil
}

// AdjustTask merges the non-nil fields of the patch into the task. Employees
// may not hand a task to someone else.
func AdjustTask(b *model.Board, taskID string, patch dto.AdjustTaskRequest, requester model.User) (*model.Task, error) {
	task := FindTask(b, taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if patch.AssigneeID != nil && !requester.Privileged() && *patch.AssigneeID != requester.UserID {
		return nil, fmt.Errorf("%w: you can only assign tasks to yourself", ErrForbidden)
	}
	if patch.SprintID != nil && *patch.SprintID != "" && FindSprint(b, *patch.SprintID) == nil {
		return nil, ErrSprintNotFound
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.AssigneeID != nil {
		task.AssigneeID = *patch.AssigneeID
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Labels != nil {
		task.Labels = *patch.Labels
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.SprintID != nil {
		task.SprintID = *patch.SprintID
	}
	return task, nil
}

// RemoveTask deletes the task and purges its id from every column. A task id
// absent from a column is simply skipped.
func RemoveTask(b *model.Board, taskID string) error {
	found := false
	for i := range b.Tasks {
		if b.Tasks[i].TaskID == taskID {
			b.Tasks = append(b.Tasks[:i], b.Tasks[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return ErrTaskNotFound
	}
	for i := range b.Columns {
		b.Columns[i].TaskIDs = removeID(b.Columns[i].TaskIDs, taskID)
	}
	return nil
}

// MoveTask relocates a task id between columns. The task is looked up in the
// source column by value, not by the client-supplied index, so a stale index
// from a concurrent edit cannot move the wrong card. A nil destination means
// the card was dropped outside every column: it is removed from its lane but
// stays on the board (surfaced to clients via UnfiledTaskIDs).
func MoveTask(b *model.Board, source dto.DropPosition, destination *dto.DropPosition, taskID string) error {
	src := FindColumn(b, source.DroppableID)
	if src == nil {
		return ErrColumnNotFound
	}
	if FindTask(b, taskID) == nil {
		return ErrTaskNotFound
	}
	var dst *model.Column
	if destination != nil {
		dst = FindColumn(b, destination.DroppableID)
		if dst == nil {
			return ErrColumnNotFound
		}
	}

	pos := -1
	for i, id := range src.TaskIDs {
		if id == taskID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: task is not in the source column", ErrTaskNotFound)
	}
	src.TaskIDs = append(src.TaskIDs[:pos], src.TaskIDs[pos+1:]...)

	if dst == nil {
		return nil
	}

	// Clamp so a stale index from a concurrent edit still lands in range.
	at := destination.Index
	if at < 0 {
		at = 0
	}
	if at > len(dst.TaskIDs) {
		at = len(dst.TaskIDs)
	}
	dst.TaskIDs = append(dst.TaskIDs[:at], append([]string{taskID}, dst.TaskIDs[at:]...)...)
	return nil
}

// AddColumn appends a new lane at the end of the workflow.
func AddColumn(b *model.Board, title string) model.Column {
	column := model.NewColumn(title)
	b.Columns = append(b.Columns, column)
	return column
}

// ReorderColumns moves the column at sourceIndex to destIndex.
func ReorderColumns(b *model.Board, sourceIndex, destIndex int) error {
	n := len(b.Columns)
	if sourceIndex < 0 || sourceIndex >= n || destIndex < 0 || destIndex >= n {
		return fmt.Errorf("%w: column index out of range", ErrColumnNotFound)
	}
	column := b.Columns[sourceIndex]
	b.Columns = append(b.Columns[:sourceIndex], b.Columns[sourceIndex+1:]...)
	b.Columns = append(b.Columns[:destIndex], append([]model.Column{column}, b.Columns[destIndex:]...)...)
	return nil
}

// AddSprint appends the sprint; when it is created active, every other sprint
// is deactivated in the same board write.
func AddSprint(b *model.Board, req dto.CreateSprintRequest) *model.Sprint {
	if req.Active {
		deactivateSprints(b)
	}
	sprint := model.Sprint{
		SprintID:  uuid.NewString(),
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Active:    req.Active,
	}
	b.Sprints = append(b.Sprints, sprint)
	return &b.Sprints[len(b.Sprints)-1]
}

// AdjustSprint merges the non-nil fields; activating deactivates the rest.
func AdjustSprint(b *model.Board, sprintID string, patch dto.AdjustSprintRequest) (*model.Sprint, error) {
	sprint := FindSprint(b, sprintID)
	if sprint == nil {
		return nil, ErrSprintNotFound
	}
	if patch.Active != nil && *patch.Active {
		deactivateSprints(b)
	}
	if patch.Name != nil {
		sprint.Name = *patch.Name
	}
	if patch.StartDate != nil {
		sprint.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		sprint.EndDate = *patch.EndDate
	}
	if patch.Active != nil {
		sprint.Active = *patch.Active
	}
	return sprint, nil
}

func deactivateSprints(b *model.Board) {
	for i := range b.Sprints {
		b.Sprints[i].Active = false
	}
}

// AddComment appends a comment with a generated id and server timestamp.
func AddComment(b *model.Board, taskID string, authorID uint, text string) (*model.Comment, error) {
	task := FindTask(b, taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	comment := model.Comment{
		CommentID: uuid.NewString(),
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	task.Comments = append(task.Comments, comment)
	return &task.Comments[len(task.Comments)-1], nil
}

// RemoveComment filters the comment out by id; an absent id is a no-op.
func RemoveComment(b *model.Board, taskID, commentID string) error {
	task := FindTask(b, taskID)
	if task == nil {
		return ErrTaskNotFound
	}
	kept := task.Comments[:0]
	for _, comment := range task.Comments {
		if comment.CommentID != commentID {
			kept = append(kept, comment)
		}
	}
	task.Comments = kept
	return nil
}

// UnfiledTaskIDs lists tasks that belong to no column (cards dropped outside
// the board). Computed on read, never stored.
func UnfiledTaskIDs(b *model.Board) []string {
	filed := make(map[string]bool)
	for _, column := range b.Columns {
		for _, id := range column.TaskIDs {
			filed[id] = true
		}
	}
	var unfiled []string
	for _, task := range b.Tasks {
		if !filed[task.TaskID] {
			unfiled = append(unfiled, task.TaskID)
		}
	}
	return unfiled
}

// VisibleBoard builds the read-only projection of a board for one viewer.
// Employees always see only their own tasks: the assignee filter is forced to
// their id no matter what was requested. Admins and owners may filter freely
// (0 = everyone). A non-empty sprintID further restricts by sprint reference.
// Column task-id lists are rewritten to the visible subset; the stored board
// is never touched.
func VisibleBoard(b *model.Board, viewer model.User, assigneeID uint, sprintID string) model.Board {
	if !viewer.Privileged() {
		assigneeID = viewer.UserID
	}

	visible := make(map[string]bool, len(b.Tasks))
	tasks := make([]model.Task, 0, len(b.Tasks))
	for _, task := range b.Tasks {
		if assigneeID != 0 && task.AssigneeID != assigneeID {
			continue
		}
		if sprintID != "" && task.SprintID != sprintID {
			continue
		}
		visible[task.TaskID] = true
		tasks = append(tasks, task)
	}

	columns := make([]model.Column, len(b.Columns))
	for i, column := range b.Columns {
		ids := make([]string, 0, len(column.TaskIDs))
		for _, id := range column.TaskIDs {
			if visible[id] {
				ids = append(ids, id)
			}
		}
		columns[i] = model.Column{ColumnID: column.ColumnID, Title: column.Title, TaskIDs: ids}
	}

	projection := *b
	projection.Columns = columns
	projection.Tasks = tasks
	projection.Sprints = append([]model.Sprint{}, b.Sprints...)
	projection.UnfiledTaskIDs = UnfiledTaskIDs(b)
	return projection
}

func removeID(ids []string, target string) []string {
	kept := ids[:0]
	for _, id := range ids {
		if id != target {
			kept = append(kept, id)
		}
	}
	return kept
}
