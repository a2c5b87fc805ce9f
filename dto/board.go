package dto

type CreateBoardRequest struct {
	OrgID       string `json:"orgId" binding:"required"`
	Name        string `json:"name"`
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
}

type AddColumnRequest struct {
	Title string `json:"title" binding:"required"`
}

// Index fields are pointers so an explicit 0 survives binding validation.
type ReorderColumnsRequest struct {
	SourceIndex *int `json:"sourceIndex" binding:"required"`
	DestIndex   *int `json:"destIndex" binding:"required"`
}
