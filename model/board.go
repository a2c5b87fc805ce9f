package model

import (
	"time"

	"github.com/google/uuid"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Board is the per-organization aggregate stored as a single Firestore
// document in the "Boards" collection. Columns, tasks and sprints are
// embedded; the whole document is the unit of persistence.
type Board struct {
	BoardID        string    `firestore:"boardId" json:"boardId"`
	Name           string    `firestore:"name" json:"name"`
	OrganizationID string    `firestore:"organizationId" json:"organizationId"`
	ProjectID      string    `firestore:"projectId,omitempty" json:"projectId,omitempty"`
	ProjectName    string    `firestore:"projectName,omitempty" json:"projectName,omitempty"`
	Columns        []Column  `firestore:"columns" json:"columns"`
	Tasks          []Task    `firestore:"tasks" json:"tasks"`
	Sprints        []Sprint  `firestore:"sprints" json:"sprints"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt" json:"updatedAt"`

	// UnfiledTaskIDs lists tasks currently in no column (cards dragged
	// outside the board). Computed when the board is served, never stored.
	UnfiledTaskIDs []string `firestore:"-" json:"unfiledTaskIds,omitempty"`
}

// Column is a Kanban lane. TaskIDs is ordered; every id must reference a task
// in the owning board's Tasks list, and a task id lives in at most one column.
type Column struct {
	ColumnID string   `firestore:"columnId" json:"columnId"`
	Title    string   `firestore:"title" json:"title"`
	TaskIDs  []string `firestore:"taskIds" json:"taskIds"`
}

type Task struct {
	TaskID      string     `firestore:"taskId" json:"taskId"`
	Title       string     `firestore:"title" json:"title"`
	Description string     `firestore:"description,omitempty" json:"description,omitempty"`
	AssigneeID  uint       `firestore:"assigneeId" json:"assigneeId"` // 0 = unassigned
	Priority    string     `firestore:"priority,omitempty" json:"priority,omitempty"`
	Labels      []string   `firestore:"labels,omitempty" json:"labels,omitempty"`
	DueDate     *time.Time `firestore:"dueDate,omitempty" json:"dueDate,omitempty"`
	SprintID    string     `firestore:"sprintId,omitempty" json:"sprintId,omitempty"`
	CreatedBy   uint       `firestore:"createdBy" json:"createdBy"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
	Comments    []Comment  `firestore:"comments" json:"comments"`
}

// Sprint is a time-boxed grouping of tasks. At most one sprint per board has
// Active set; activation goes through the sprint write paths which deactivate
// the others first.
type Sprint struct {
	SprintID  string    `firestore:"sprintId" json:"sprintId"`
	Name      string    `firestore:"name" json:"name"`
	StartDate time.Time `firestore:"startDate" json:"startDate"`
	EndDate   time.Time `firestore:"endDate" json:"endDate"`
	Active    bool      `firestore:"active" json:"active"`
}

type Comment struct {
	CommentID string    `firestore:"commentId" json:"commentId"`
	AuthorID  uint      `firestore:"authorId" json:"authorId"`
	Text      string    `firestore:"text" json:"text"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

// BoardDocID builds the deterministic document id for an organization's board.
// One board per (organization, project) pair.
func BoardDocID(orgID, projectID string) string {
	if projectID == "" {
		return orgID
	}
	return orgID + "_" + projectID
}

// DefaultColumns returns the workflow lanes every new board starts with.
func DefaultColumns() []Column {
	return []Column{
		{ColumnID: "new", Title: "New", TaskIDs: []string{}},
		{ColumnID: "in-progress", Title: "In Progress", TaskIDs: []string{}},
		{ColumnID: "qa", Title: "Moved to QA", TaskIDs: []string{}},
		{ColumnID: "done", Title: "Done", TaskIDs: []string{}},
		{ColumnID: "reported", Title: "Reported", TaskIDs: []string{}},
	}
}

func NewBoard(orgID, projectID, name, projectName string) *Board {
	if name == "" {
		name = "Task Board"
	}
	now := time.Now()
	return &Board{
		BoardID:        BoardDocID(orgID, projectID),
		Name:           name,
		OrganizationID: orgID,
		ProjectID:      projectID,
		ProjectName:    projectName,
		Columns:        DefaultColumns(),
		Tasks:          []Task{},
		Sprints:        []Sprint{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func NewColumn(title string) Column {
	return Column{ColumnID: uuid.NewString(), Title: title, TaskIDs: []string{}}
}
