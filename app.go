package main

import (
	"log"

	"github.com/grutapig/xscraper/twitterapi"
)

type Application struct {
	config              *Config
	twitterAPI          *twitterapi.TwitterAPIService
	databaseService     *DatabaseService
	executionLogService *ExecutionLogService
	notificationService *NotificationService
	executor            *QueryExecutorService
	scheduler           *SchedulerService
	cleanupScheduler    *CleanupScheduler
	apiServer           *ApiServer
}

func NewApplication(
	config *Config,
	twitterAPI *twitterapi.TwitterAPIService,
	databaseService *DatabaseService,
	executionLogService *ExecutionLogService,
	notificationService *NotificationService,
	executor *QueryExecutorService,
	scheduler *SchedulerService,
	cleanupScheduler *CleanupScheduler,
	apiServer *ApiServer,
) (*Application, error) {
	return &Application{
		config:              config,
		twitterAPI:          twitterAPI,
		databaseService:     databaseService,
		executionLogService: executionLogService,
		notificationService: notificationService,
		executor:            executor,
		scheduler:           scheduler,
		cleanupScheduler:    cleanupScheduler,
		apiServer:           apiServer,
	}, nil
}

func (app *Application) Initialize() error {
	log.Println("Database service initialized successfully")
	log.Println("Execution log service initialized successfully")

	if app.config.ImportCSVPath != "" {
		log.Printf("CSV import path specified: %s", app.config.ImportCSVPath)
		importer := NewCSVImporter(app.databaseService)
		result, err := importer.ImportCSV(app.config.ImportCSVPath)
		if err != nil {
			log.Printf("CSV import failed: %v", err)
			log.Println("Continuing without historical data...")
		} else {
			log.Printf("CSV import successful: %s", result.String())
		}
	}

	app.cleanupScheduler.Start()

	if app.config.SchedulerDisabled {
		log.Println("Query scheduler disabled, queries run via API only")
	} else {
		app.scheduler.Start()
	}

	return nil
}

// Run blocks on the HTTP server until it is shut down.
func (app *Application) Run() error {
	return app.apiServer.Start()
}

func (app *Application) Shutdown() {
	log.Println("Shutting down application...")

	if err := app.apiServer.Shutdown(); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}
	if !app.config.SchedulerDisabled {
		app.scheduler.Stop()
	}
	app.cleanupScheduler.Stop()

	app.databaseService.Close()
	app.executionLogService.Close()

	log.Println("Application shutdown completed")
}
