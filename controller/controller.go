package controller

import (
	"errors"
	"net/http"

	"teamflow/model"
	"teamflow/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Requester resolves the authenticated principal to their user row and
// verifies they belong to the organization named in their token. Writes the
// error response itself and returns false when the lookup fails.
func Requester(c *gin.Context, db *gorm.DB) (*model.User, bool) {
	userID := c.MustGet("userId").(uint)
	orgID := c.MustGet("orgId").(string)

	user, err := services.GetOrgMember(db, userID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this organization"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user data"})
		}
		return nil, false
	}
	return user, true
}

// RequireSameOrg rejects cross-organization access to a board.
func RequireSameOrg(board *model.Board, requester *model.User) error {
	if board.OrganizationID != requester.OrganizationID {
		return services.ErrForbidden
	}
	return nil
}

// RespondError maps service errors onto the HTTP taxonomy: forbidden 403,
// missing entities 404, anything else 500.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenMessage(err)})
	case errors.Is(err, services.ErrBoardNotFound),
		errors.Is(err, services.ErrColumnNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrSprintNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func forbiddenMessage(err error) string {
	if errors.Is(err, services.ErrForbidden) && err.Error() != services.ErrForbidden.Error() {
		return err.Error()
	}
	return "You don't have permission to access this board"
}

// ServeBoard attaches the computed unfiled-task list and writes the board.
func ServeBoard(c *gin.Context, status int, board *model.Board) {
	board.UnfiledTaskIDs = services.UnfiledTaskIDs(board)
	c.JSON(status, board)
}
