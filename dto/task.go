package dto

import "time"

type CreateTaskRequest struct {
	ColumnID    string     `json:"columnId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	AssigneeID  uint       `json:"assigneeId"`
	Priority    string     `json:"priority"`
	Labels      []string   `json:"labels"`
	DueDate     *time.Time `json:"dueDate"`
	SprintID    string     `json:"sprintId"`
}

// AdjustTaskRequest is a partial update: only non-nil fields are applied.
// Column membership and position never change through this path.
type AdjustTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	AssigneeID  *uint      `json:"assigneeId"`
	Priority    *string    `json:"priority"`
	Labels      *[]string  `json:"labels"`
	DueDate     *time.Time `json:"dueDate"`
	SprintID    *string    `json:"sprintId"`
}

// DropPosition mirrors the drag-and-drop payload the dashboard sends:
// a column id plus the index within that column's task list.
type DropPosition struct {
	DroppableID string `json:"droppableId" binding:"required"`
	Index       int    `json:"index"`
}

// MoveTaskRequest with a nil Destination means the card was dropped outside
// every column.
type MoveTaskRequest struct {
	Source      DropPosition  `json:"source" binding:"required"`
	Destination *DropPosition `json:"destination"`
	DraggableID string        `json:"draggableId" binding:"required"`
}
