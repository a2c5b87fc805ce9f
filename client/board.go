// Package client is the Go client for the board API, used by the dashboard
// gateway and by integration tooling. It keeps a local board snapshot and
// applies drag-and-drop moves optimistically, then reconciles with the
// server's returned board so the snapshot never drifts after a failed call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"teamflow/dto"
	"teamflow/model"
	"teamflow/services"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client

	mu    sync.Mutex
	board *model.Board
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Board returns the current local snapshot, or nil before the first fetch.
func (c *Client) Board() *model.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board
}

// BoardFilter narrows a fetch; zero values mean no filtering (the server
// still forces employees onto their own tasks).
type BoardFilter struct {
	AssigneeID uint
	SprintID   string
	ProjectID  string
}

func (c *Client) FetchBoard(ctx context.Context, orgID string, filter BoardFilter) (*model.Board, error) {
	query := url.Values{}
	if filter.AssigneeID != 0 {
		query.Set("assigneeId", strconv.FormatUint(uint64(filter.AssigneeID), 10))
	}
	if filter.SprintID != "" {
		query.Set("sprintId", filter.SprintID)
	}
	if filter.ProjectID != "" {
		query.Set("projectId", filter.ProjectID)
	}

	path := "/board/" + url.PathEscape(orgID)
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var board model.Board
	if err := c.do(ctx, http.MethodGet, path, nil, &board); err != nil {
		return nil, err
	}
	c.replaceSnapshot(&board)
	return &board, nil
}

func (c *Client) CreateBoard(ctx context.Context, req dto.CreateBoardRequest) (*model.Board, error) {
	var board model.Board
	if err := c.do(ctx, http.MethodPost, "/board", req, &board); err != nil {
		return nil, err
	}
	c.replaceSnapshot(&board)
	return &board, nil
}

func (c *Client) AddColumn(ctx context.Context, boardID, title string) (*model.Board, error) {
	return c.boardCall(ctx, http.MethodPost, "/board/"+url.PathEscape(boardID)+"/column", dto.AddColumnRequest{Title: title})
}

func (c *Client) ReorderColumns(ctx context.Context, boardID string, sourceIndex, destIndex int) (*model.Board, error) {
	req := dto.ReorderColumnsRequest{SourceIndex: &sourceIndex, DestIndex: &destIndex}
	return c.boardCall(ctx, http.MethodPut, "/board/"+url.PathEscape(boardID)+"/columns/reorder", req)
}

func (c *Client) AddTask(ctx context.Context, boardID string, req dto.CreateTaskRequest) (*model.Board, error) {
	return c.boardCall(ctx, http.MethodPost, "/board/"+url.PathEscape(boardID)+"/task", req)
}

func (c *Client) UpdateTask(ctx context.Context, boardID, taskID string, patch dto.AdjustTaskRequest) (*model.Board, error) {
	return c.boardCall(ctx, http.MethodPut, "/board/"+url.PathEscape(boardID)+"/task/"+url.PathEscape(taskID), patch)
}

func (c *Client) DeleteTask(ctx context.Context, boardID, taskID string) (*model.Board, error) {
	return c.boardCall(ctx, http.MethodDelete, "/board/"+url.PathEscape(boardID)+"/task/"+url.PathEscape(taskID), nil)
}

// MoveTask performs a drop. Identical source and destination is a no-op
// handled entirely locally. Otherwise the local snapshot is spliced
// immediately so the UI repaints without waiting, the move is sent, and the
// snapshot is replaced by the server's board. If the request fails the
// optimistic splice is rolled back.
func (c *Client) MoveTask(ctx context.Context, boardID string, source dto.DropPosition, destination *dto.DropPosition, taskID string) (*model.Board, error) {
	if destination != nil && destination.DroppableID == source.DroppableID && destination.Index == source.Index {
		return c.Board(), nil
	}

	c.mu.Lock()
	var rollback *model.Board
	if c.board != nil {
		snapshot := cloneBoard(c.board)
		if err := services.MoveTask(snapshot, source, destination, taskID); err == nil {
			rollback = c.board
			c.board = snapshot
		}
	}
	c.mu.Unlock()

	req := dto.MoveTaskRequest{Source: source, Destination: destination, DraggableID: taskID}
	board, err := c.boardCall(ctx, http.MethodPost, "/board/"+url.PathEscape(boardID)+"/move", req)
	if err != nil {
		if rollback != nil {
			c.replaceSnapshot(rollback)
		}
		return nil, err
	}
	return board, nil
}

func (c *Client) AddComment(ctx context.Context, boardID, taskID, text string) (*model.Comment, error) {
	var comment model.Comment
	path := "/board/" + url.PathEscape(boardID) + "/task/" + url.PathEscape(taskID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, dto.AddCommentRequest{Text: text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, boardID, taskID, commentID string) error {
	path := "/board/" + url.PathEscape(boardID) + "/task/" + url.PathEscape(taskID) + "/comments/" + url.PathEscape(commentID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) CreateSprint(ctx context.Context, boardID string, req dto.CreateSprintRequest) (*model.Sprint, error) {
	var sprint model.Sprint
	if err := c.do(ctx, http.MethodPost, "/board/"+url.PathEscape(boardID)+"/sprints", req, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (c *Client) ListSprints(ctx context.Context, boardID string) ([]model.Sprint, error) {
	var sprints []model.Sprint
	if err := c.do(ctx, http.MethodGet, "/board/"+url.PathEscape(boardID)+"/sprints", nil, &sprints); err != nil {
		return nil, err
	}
	return sprints, nil
}

func (c *Client) UpdateSprint(ctx context.Context, boardID, sprintID string, patch dto.AdjustSprintRequest) (*model.Sprint, error) {
	var sprint model.Sprint
	path := "/board/" + url.PathEscape(boardID) + "/sprints/" + url.PathEscape(sprintID)
	if err := c.do(ctx, http.MethodPatch, path, patch, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (c *Client) SuggestGoals(ctx context.Context, boardID string) ([]string, error) {
	var resp struct {
		Goals []string `json:"goals"`
	}
	if err := c.do(ctx, http.MethodGet, "/board/"+url.PathEscape(boardID)+"/goals", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Goals, nil
}

func (c *Client) SummarizeProgress(ctx context.Context, boardID string) (string, error) {
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, "/board/"+url.PathEscape(boardID)+"/summary", nil, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// boardCall is for mutations that answer with the full board document; the
// local snapshot is always replaced by the server's state.
func (c *Client) boardCall(ctx context.Context, method, path string, body any) (*model.Board, error) {
	var board model.Board
	if err := c.do(ctx, method, path, body, &board); err != nil {
		return nil, err
	}
	c.replaceSnapshot(&board)
	return &board, nil
}

func (c *Client) replaceSnapshot(board *model.Board) {
	c.mu.Lock()
	c.board = board
	c.mu.Unlock()
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*apiError)
	return ok && apiErr.Status == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var parsed struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		message := string(data)
		if json.Unmarshal(data, &parsed) == nil && parsed.Error != "" {
			message = parsed.Error
		}
		return &apiError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func cloneBoard(b *model.Board) *model.Board {
	clone := *b
	clone.Columns = make([]model.Column, len(b.Columns))
	for i, column := range b.Columns {
		clone.Columns[i] = column
		clone.Columns[i].TaskIDs = append([]string{}, column.TaskIDs...)
	}
	clone.Tasks = append([]model.Task{}, b.Tasks...)
	clone.Sprints = append([]model.Sprint{}, b.Sprints...)
	return &clone
}
