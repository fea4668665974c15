// Package firebaseapp initialises the Firebase app shared by the Firestore
// store backend and the FCM notifier.
package firebaseapp

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

// EmulatorHostEnv points the Firestore client at a local emulator.
const EmulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

// New initialises a Firebase app for projectID. When credentialsFile is
// empty, application default credentials are used, or none at all when an
// emulator is configured.
func New(ctx context.Context, projectID, credentialsFile string) (*firebase.App, error) {
	var opts []option.ClientOption
	switch {
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	case os.Getenv(EmulatorHostEnv) != "":
		opts = append(opts, option.WithoutAuthentication())
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
