package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/vidshelf/backend/pkg/logging"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and its clients. Messaging is nil unless push is enabled.
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
	Messaging   *messaging.Client
}

// InitFirebase initializes the Firebase application, its auth client and optionally FCM
func InitFirebase(ctx context.Context, credentialsPath string, withMessaging bool) (*App, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	firebaseApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}
	app := &App{FirebaseApp: firebaseApp, AuthClient: authClient}

	if withMessaging {
		if app.Messaging, err = firebaseApp.Messaging(ctx); err != nil {
			return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
		}
	}

	logging.Info().Bool("messaging", withMessaging).Msg("firebase initialized")
	return app, nil
}
