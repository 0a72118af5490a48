// File: internal/firebase/service.go
package firebase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"life_lesson_backend/internal/common"
	"life_lesson_backend/internal/config"
)

// Service verifies bearer credentials against Firebase and extracts the
// caller's verified email and display name.
type Service struct {
	authClient    *auth.Client
	verifyTimeout time.Duration
	logger        *zap.Logger
}

// NewService initializes the Firebase Admin SDK and creates the verifier.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error

	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// If ProjectID is not specified in config, let SDK infer from credentials
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}

	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &Service{
		authClient:    authClient,
		verifyTimeout: cfg.TokenVerifyTimeout,
		logger:        logger,
	}, nil
}

// Verify validates an ID token and returns the verified caller identity.
// The external call runs under a bounded timeout; any failure is reported
// to the caller without provider detail.
func (s *Service) Verify(ctx context.Context, idToken string) (common.Identity, error) {
	if idToken == "" {
		return common.Identity{}, fmt.Errorf("ID token must not be empty")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.verifyTimeout)
	defer cancel()

	token, err := s.authClient.VerifyIDToken(verifyCtx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return common.Identity{}, fmt.Errorf("failed to verify ID token: %w", err)
	}

	identity := identityFromClaims(token)
	if identity.Email == "" {
		s.logger.Warn("Verified token carries no email claim", zap.String("uid", token.UID))
		return common.Identity{}, fmt.Errorf("verified token has no email claim")
	}

	s.logger.Debug("ID token verified successfully", zap.String("uid", token.UID))
	return identity, nil
}

func identityFromClaims(token *auth.Token) common.Identity {
	var identity common.Identity
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.Name = name
	}
	return identity
}
