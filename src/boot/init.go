package boot

import (
	"context"
	"etix/src/db"
	"etix/src/events"
	"etix/src/lib"
	"etix/src/models"
	"etix/src/tickets"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Ticket{},
		&models.Transaction{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the housekeeping sweep: confirmed tickets of past
// events expire, and published events whose date has passed complete. Both
// sweeps are guarded UPDATEs, so overlapping runs are harmless.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	gdb := db.GetDb()
	ticketLedger := tickets.NewLedger(gdb)
	eventStore := events.NewStore(gdb)
	j, err := sched.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(func() {
			ctx := context.Background()
			expired, err := ticketLedger.Expire(ctx, time.Now())
			if err != nil {
				log.Printf("[sweep] error expiring tickets: %s\n", err.Error())
			} else if expired > 0 {
				log.Printf("[sweep] expired %d tickets\n", expired)
			}
			completed, err := eventStore.CompletePast(ctx)
			if err != nil {
				log.Printf("[sweep] error completing events: %s\n", err.Error())
			} else if completed > 0 {
				log.Printf("[sweep] completed %d events\n", completed)
			}
		}),
	)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s %s\n", j.Name(), j.ID().String())
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
