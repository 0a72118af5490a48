// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"life_lesson_backend/internal/app"
	"life_lesson_backend/internal/config"
	"life_lesson_backend/internal/firebase"
	"life_lesson_backend/internal/jobs"
	"life_lesson_backend/internal/lesson"
	"life_lesson_backend/internal/payment"
	"life_lesson_backend/internal/platform/database"
	"life_lesson_backend/internal/platform/logger"
	"life_lesson_backend/internal/report"
	"life_lesson_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewMongo,

		// Firebase Service
		firebase.NewService,

		// Core User Services
		user.NewMongoRepository,
		user.NewService, // Provides *user.ServiceImplementation
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(payment.Accounts), new(*user.ServiceImplementation)),
		provideLessonPurger,
		user.NewHandler,

		// Lessons
		lesson.NewMongoRepository,
		lesson.NewService,
		lesson.NewHandler,

		// Reports
		report.NewMongoRepository,
		report.NewService,
		wire.Bind(new(report.Service), new(*report.ServiceImplementation)),
		report.NewHandler,

		// Payments
		payment.NewStripeCheckoutCreator,
		payment.NewService,
		wire.Bind(new(payment.Service), new(*payment.ServiceImplementation)),
		payment.NewHandler,

		// Jobs
		jobs.NewReportCleanupJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

// provideLessonPurger narrows the lesson repository to the cascade hook the
// user service needs.
func provideLessonPurger(repo lesson.Repository) user.LessonPurger {
	return repo
}
