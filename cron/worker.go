package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"voyago/config"
	leadRepo "voyago/database/repository/lead"
	"voyago/models"
	"voyago/services/catalog"
	"voyago/services/tasks"
	"voyago/utils"
)

// InitQueueWorker runs the async worker in background: it delivers lead
// hand-off notifications to managers and rebuilds the vendor catalog on a
// schedule.
func InitQueueWorker(leads leadRepo.LeadRepository, cat catalog.Service) {
	redisOpts := utils.AsynqRedisOpt()

	concurrency := config.AppConfig.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueLeads:   3,
				tasks.QueueCatalog: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeLeadHandoff, handleLeadHandoffTask(leads))
	mux.HandleFunc(tasks.TypeCatalogRefresh, handleCatalogRefreshTask(cat))

	// Start Redis health monitor
	go monitorRedisConnection()

	go scheduleCatalogRefresh(redisOpts)

	// Start async worker with retry logic
	go func() {
		log.Println("[QueueWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[QueueWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[QueueWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleLeadHandoffTask notifies managers of a new lead. Delivery is a
// structured log line managers watch; a repo failure returns the error so
// asynq retries the notification.
func handleLeadHandoffTask(leads leadRepo.LeadRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.LeadHandoffPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[LeadHandoff] 🔴 Invalid payload: %v", err)
			return err
		}

		lead, err := leads.GetByID(p.LeadID)
		if err != nil {
			log.Printf("[LeadHandoff] ❌ Failed to load lead %s: %v", p.LeadID, err)
			return err
		}

		log.Printf("[LeadHandoff] 📞 New lead %s (%s): %s, phone=%s, conversation=%s",
			lead.ID, lead.Reason, describeTrip(lead.Slots), orDash(lead.Phone), lead.ConversationID)
		return nil
	}
}

// handleCatalogRefreshTask rebuilds the vendor reference catalog.
func handleCatalogRefreshTask(cat catalog.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.CatalogRefreshPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[CatalogRefresh] 🔴 Invalid payload: %v", err)
			return err
		}

		started := time.Now()
		if err := cat.Refresh(ctx); err != nil {
			log.Printf("[CatalogRefresh] ❌ Refresh failed: %v", err)
			return err
		}
		log.Printf("[CatalogRefresh] ✅ Catalog refreshed in %s", time.Since(started).Round(time.Millisecond))
		return nil
	}
}

// scheduleCatalogRefresh registers the periodic catalog rebuild.
func scheduleCatalogRefresh(redisOpts asynq.RedisClientOpt) {
	hours := config.AppConfig.CatalogRefreshHours
	if hours <= 0 {
		hours = 12
	}

	task, opts, err := tasks.NewCatalogRefreshTask(models.CatalogRefreshPayload{})
	if err != nil {
		log.Printf("[CatalogRefresh] ❌ Failed to build periodic task: %v", err)
		return
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(fmt.Sprintf("@every %dh", hours), task, opts...); err != nil {
		log.Printf("[CatalogRefresh] ❌ Failed to register periodic task: %v", err)
		return
	}

	log.Printf("[CatalogRefresh] ⏰ Scheduled catalog rebuild every %dh", hours)
	if err := scheduler.Run(); err != nil {
		log.Printf("[CatalogRefresh] ❌ Scheduler stopped: %v", err)
	}
}

func describeTrip(slots models.TripSlots) string {
	if slots.Destination == "" {
		return "направление уточняется"
	}
	desc := slots.Destination
	if !slots.DateStart.IsZero() {
		desc += ", с " + slots.DateStart.Format("02.01.2006")
	}
	if n := slots.TotalPax(); n > 0 {
		desc += fmt.Sprintf(", %d чел.", n)
	}
	return desc
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[QueueWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
