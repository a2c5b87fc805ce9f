package scheduler

import (
	"context"
	"log"
	"time"

	"teamflow/model"
	"teamflow/services"

	"cloud.google.com/go/firestore"
	"github.com/robfig/cron/v3"
	"google.golang.org/api/iterator"
)

// Start schedules the hourly sprint-expiry sweep. The cron runner owns its
// own goroutines; this returns immediately.
func Start(firestoreClient *firestore.Client) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("@hourly", func() {
		log.Println("Running sprint expiry sweep...")
		ExpireSprints(context.Background(), firestoreClient)
	})
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started")
	return c
}

// ExpireSprints deactivates every active sprint whose end date has passed.
// Each board is updated through the same transactional path as the API, so
// the single-active-sprint invariant is preserved under concurrent writes.
func ExpireSprints(ctx context.Context, firestoreClient *firestore.Client) {
	now := time.Now()

	iter := firestoreClient.Collection("Boards").Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Sprint expiry sweep aborted: %v", err)
			return
		}

		var board model.Board
		if err := doc.DataTo(&board); err != nil {
			log.Printf("Skipping undecodable board %s: %v", doc.Ref.ID, err)
			continue
		}

		active := services.ActiveSprint(&board)
		if active == nil || active.EndDate.After(now) {
			continue
		}

		expired := active.SprintID
		_, err = services.MutateBoard(ctx, firestoreClient, board.BoardID, func(b *model.Board) error {
			sprint := services.FindSprint(b, expired)
			if sprint != nil && sprint.Active && !sprint.EndDate.After(now) {
				sprint.Active = false
				log.Printf("Deactivated ended sprint %q on board %s", sprint.Name, b.BoardID)
			}
			return nil
		})
		if err != nil {
			log.Printf("Failed to expire sprint on board %s: %v", board.BoardID, err)
		}
	}
}
