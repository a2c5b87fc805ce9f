package services

import (
	"context"
	"fmt"
	"time"

	"teamflow/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const boardsCollection = "Boards"

func BoardDocRef(client *firestore.Client, boardID string) *firestore.DocumentRef {
	return client.Collection(boardsCollection).Doc(boardID)
}

// LoadBoard fetches a board document by id.
func LoadBoard(ctx context.Context, client *firestore.Client, boardID string) (*model.Board, error) {
	doc, err := BoardDocRef(client, boardID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	var board model.Board
	if err := doc.DataTo(&board); err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}
	return &board, nil
}

// CreateBoard stores a new board document. Creation is idempotent per
// (organization, project): if the document already exists the stored board is
// returned with created == false and nothing is written.
func CreateBoard(ctx context.Context, client *firestore.Client, board *model.Board) (*model.Board, bool, error) {
	ref := BoardDocRef(client, board.BoardID)
	if _, err := ref.Create(ctx, board); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			existing, loadErr := LoadBoard(ctx, client, board.BoardID)
			if loadErr != nil {
				return nil, false, loadErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create board: %w", err)
	}
	return board, true, nil
}

// MutateBoard runs mutate against the current board state inside a Firestore
// transaction and writes the whole document back. Contended writes are
// retried by the transaction runner against fresh state, so two concurrent
// moves cannot silently drop each other. Any error from mutate aborts the
// transaction with nothing persisted.
func MutateBoard(ctx context.Context, client *firestore.Client, boardID string, mutate func(*model.Board) error) (*model.Board, error) {
	ref := BoardDocRef(client, boardID)
	var board model.Board

	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrBoardNotFound
			}
			return fmt.Errorf("failed to load board: %w", err)
		}
		board = model.Board{}
		if err := doc.DataTo(&board); err != nil {
			return fmt.Errorf("failed to decode board: %w", err)
		}
		if err := mutate(&board); err != nil {
			return err
		}
		board.UpdatedAt = time.Now()
		return tx.Set(ref, &board)
	})
	if err != nil {
		return nil, err
	}
	return &board, nil
}
