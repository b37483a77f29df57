package main

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DEFAULT_SCHEDULE_INTERVAL = time.Hour

// SchedulerService periodically runs every active query whose interval
// has elapsed. It guarantees at most one in-flight run per query id;
// the executor itself does not lock.
type SchedulerService struct {
	dbService           *DatabaseService
	executor            *QueryExecutorService
	executionLogService *ExecutionLogService
	notificationService *NotificationService
	pollInterval        time.Duration

	mu       sync.Mutex
	inFlight map[uint]bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewSchedulerService(dbService *DatabaseService, executor *QueryExecutorService, executionLogService *ExecutionLogService, notificationService *NotificationService, pollInterval time.Duration) *SchedulerService {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &SchedulerService{
		dbService:           dbService,
		executor:            executor,
		executionLogService: executionLogService,
		notificationService: notificationService,
		pollInterval:        pollInterval,
		inFlight:            make(map[uint]bool),
		stopChan:            make(chan struct{}),
	}
}

func (s *SchedulerService) Start() {
	log.Printf("Starting query scheduler, poll interval %v", s.pollInterval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runDueQueries()
			case <-s.stopChan:
				log.Printf("Query scheduler stopped")
				return
			}
		}
	}()
}

func (s *SchedulerService) Stop() {
	log.Printf("Stopping query scheduler")
	close(s.stopChan)
	s.wg.Wait()
}

func (s *SchedulerService) runDueQueries() {
	queries, err := s.dbService.ListActiveQueries()
	if err != nil {
		log.Printf("Scheduler failed to list active queries: %v", err)
		return
	}

	now := time.Now()
	for _, query := range queries {
		if !s.isDue(query, now) {
			continue
		}
		if !s.tryAcquire(query.ID) {
			log.Printf("Query %d still running, skipping this tick", query.ID)
			continue
		}

		s.wg.Add(1)
		go func(query QueryModel) {
			defer s.wg.Done()
			defer s.release(query.ID)
			s.runQuery(query)
		}(query)
	}
}

// isDue reports whether the query's interval has elapsed since its last
// run. A query that never ran is due immediately.
func (s *SchedulerService) isDue(query QueryModel, now time.Time) bool {
	if query.LastRunAt == nil {
		return true
	}
	return now.Sub(*query.LastRunAt) >= parseScheduleInterval(query.ScheduleInterval)
}

func (s *SchedulerService) runQuery(query QueryModel) {
	runUUID := uuid.New().String()
	start := time.Now()

	log.Printf("Executing query %d (%s), run %s", query.ID, query.Name, runUUID)
	summary, err := s.executor.ExecuteQuery(query.ID, DEFAULT_SEARCH_LIMIT, true, true)
	duration := time.Since(start)

	if logErr := s.executionLogService.LogExecution(runUUID, query, summary, duration, err); logErr != nil {
		log.Printf("Failed to record execution log for run %s: %v", runUUID, logErr)
	}
	if notifyErr := s.notificationService.NotifyRun(query, summary, err); notifyErr != nil {
		log.Printf("Failed to send run notification for run %s: %v", runUUID, notifyErr)
	}

	if err != nil {
		log.Printf("Query %d run %s failed after %v: %v", query.ID, runUUID, duration, err)
		return
	}
	log.Printf("Query %d run %s done in %v: found=%d saved=%d media=%d users=%d",
		query.ID, runUUID, duration, summary.Found, summary.Saved, summary.MediaFilesSaved, summary.UsersUpdated)
}

func (s *SchedulerService) tryAcquire(queryID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[queryID] {
		return false
	}
	s.inFlight[queryID] = true
	return true
}

func (s *SchedulerService) release(queryID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, queryID)
}

// parseScheduleInterval understands Go durations ("30m", "6h") plus the
// "daily" shorthand stored by the dashboard. Anything unparseable falls
// back to the default interval.
func parseScheduleInterval(interval string) time.Duration {
	switch interval {
	case "":
		return DEFAULT_SCHEDULE_INTERVAL
	case "daily":
		return 24 * time.Hour
	case "hourly":
		return time.Hour
	}
	parsed, err := time.ParseDuration(interval)
	if err != nil || parsed <= 0 {
		return DEFAULT_SCHEDULE_INTERVAL
	}
	return parsed
}
