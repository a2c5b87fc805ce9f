package connection

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DBConnection opens the relational database holding users and organizations.
func DBConnection() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// FBConnection initializes the Firebase app and returns the Firestore client
// used for board documents.
func FBConnection() (*firestore.Client, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx := context.Background()

	credentials := os.Getenv("FIREBASE_CREDENTIALS")
	var app *firebase.App
	var err error
	if credentials != "" {
		app, err = firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentials))
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore client: %w", err)
	}

	return client, nil
}

// FBApp returns the Firebase app itself, needed for the Messaging client.
func FBApp() (*firebase.App, error) {
	ctx := context.Background()

	credentials := os.Getenv("FIREBASE_CREDENTIALS")
	if credentials != "" {
		return firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentials))
	}
	return firebase.NewApp(ctx, nil)
}
