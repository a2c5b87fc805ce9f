package report

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"teamflow/controller"
	"teamflow/middleware"
	"teamflow/model"
	"teamflow/services"
	"teamflow/services/ai"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ReportController(router *gin.Engine, db *gorm.DB, firestoreClient *firestore.Client, generator ai.Generator) {
	routes := router.Group("/board", middleware.AccessTokenMiddleware())
	{
		routes.GET("/:boardid/goals", func(c *gin.Context) {
			SuggestGoals(c, db, firestoreClient, generator)
		})
		routes.GET("/:boardid/summary", func(c *gin.Context) {
			SummarizeProgress(c, db, firestoreClient, generator)
		})
	}
}

// SuggestGoals proposes 3-5 outcome-oriented goals for the board's current
// scope (the active sprint's tasks if one exists, otherwise everything).
// Read-only and never fails: if the text-generation service is down the
// response comes from the deterministic fallback.
func SuggestGoals(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, generator ai.Generator) {
	board, ok := loadBoardForReport(c, db, firestoreClient)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": GoalSuggestions(c.Request.Context(), generator, board)})
}

// SummarizeProgress returns a short bullet summary of where work stands.
// Same no-fail guarantee as SuggestGoals.
func SummarizeProgress(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client, generator ai.Generator) {
	board, ok := loadBoardForReport(c, db, firestoreClient)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": ProgressSummary(c.Request.Context(), generator, board)})
}

func loadBoardForReport(c *gin.Context, db *gorm.DB, firestoreClient *firestore.Client) (*model.Board, bool) {
	requester, ok := controller.Requester(c, db)
	if !ok {
		return nil, false
	}
	board, err := services.LoadBoard(c.Request.Context(), firestoreClient, c.Param("boardid"))
	if err != nil {
		controller.RespondError(c, err)
		return nil, false
	}
	if err := controller.RequireSameOrg(board, requester); err != nil {
		controller.RespondError(c, err)
		return nil, false
	}
	return board, true
}

// GoalSuggestions asks the collaborator for goals and falls back to a
// deterministic list built from high-priority task titles.
func GoalSuggestions(ctx context.Context, generator ai.Generator, board *model.Board) []string {
	tasks := tasksInScope(board)

	if generator != nil {
		prompt := goalsPrompt(board, tasks)
		if text, err := generator.Generate(ctx, prompt); err == nil {
			if goals := parseLines(text, 5); len(goals) > 0 {
				return goals
			}
		} else {
			log.Printf("Goal suggestion fell back to heuristic: %v", err)
		}
	}
	return fallbackGoals(tasks)
}

// ProgressSummary asks the collaborator for a bullet summary of per-column
// progress and falls back to a plain list built from the counts.
func ProgressSummary(ctx context.Context, generator ai.Generator, board *model.Board) string {
	digest := progressDigest(board)

	if generator != nil {
		prompt := fmt.Sprintf(
			"You are a project assistant. Summarize the team's progress in 3-5 short bullet points based on this board state:\n\n%s\nReply with the bullet points only.",
			digest)
		if text, err := generator.Generate(ctx, prompt); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		} else if err != nil {
			log.Printf("Progress summary fell back to counts: %v", err)
		}
	}
	return digest
}

// tasksInScope returns the active sprint's tasks, or every task when no
// sprint is active.
func tasksInScope(board *model.Board) []model.Task {
	active := services.ActiveSprint(board)
	if active == nil {
		return board.Tasks
	}
	var scoped []model.Task
	for _, task := range board.Tasks {
		if task.SprintID == active.SprintID {
			scoped = append(scoped, task)
		}
	}
	return scoped
}

func goalsPrompt(board *model.Board, tasks []model.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a project assistant. Based on the tasks below from the board %q, propose 3 to 5 outcome-oriented sprint goals. Reply with one goal per line and nothing else.\n\n", board.Name)
	for _, task := range tasks {
		fmt.Fprintf(&sb, "- %s (priority: %s)\n", task.Title, task.Priority)
	}
	if len(tasks) == 0 {
		sb.WriteString("(no tasks yet)\n")
	}
	return sb.String()
}

func fallbackGoals(tasks []model.Task) []string {
	var goals []string
	for _, task := range tasks {
		if task.Priority == model.PriorityHigh {
			goals = append(goals, fmt.Sprintf("Complete high priority task: %s", task.Title))
			if len(goals) == 5 {
				break
			}
		}
	}
	if len(goals) > 0 {
		return goals
	}
	return []string{
		"Keep work moving steadily across the board",
		"Close out the tasks already in progress",
		"Prioritize and schedule the remaining backlog",
	}
}

func progressDigest(board *model.Board) string {
	titles := make(map[string]string, len(board.Tasks))
	for _, task := range board.Tasks {
		titles[task.TaskID] = task.Title
	}

	var sb strings.Builder
	for _, column := range board.Columns {
		fmt.Fprintf(&sb, "- %s: %d task(s)", column.Title, len(column.TaskIDs))
		if column.Title == "Done" || column.Title == "In Progress" {
			var names []string
			for _, id := range column.TaskIDs {
				if title, ok := titles[id]; ok {
					names = append(names, title)
				}
			}
			if len(names) > 0 {
				fmt.Fprintf(&sb, " (%s)", strings.Join(names, ", "))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// parseLines splits a completion into up to max non-empty lines, stripping
// bullet and numbering prefixes.
func parseLines(text string, max int) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimLeft(line, "-*• \t")
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 2 {
			if _, ok := parseInt(line[:i]); ok {
				line = strings.TrimSpace(line[i+1:])
			}
		}
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}

func parseInt(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, s != ""
}
