package jobs

import (
	"log"
	"time"

	"event-marketplace-server/services"
)

// SubscriptionJob periodically runs the subscription sweep: un-features
// vendors whose subscription lapsed and warns vendors close to expiry.
type SubscriptionJob struct {
	subscriptions *services.SubscriptionService
	jwt           *services.JWTService
	dispatcher    services.Dispatcher
	interval      time.Duration
	stopChan      chan bool
}

// NewSubscriptionJob creates the job. A zero interval defaults to hourly.
func NewSubscriptionJob(subscriptions *services.SubscriptionService, jwt *services.JWTService, dispatcher services.Dispatcher, interval time.Duration) *SubscriptionJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SubscriptionJob{
		subscriptions: subscriptions,
		jwt:           jwt,
		dispatcher:    dispatcher,
		interval:      interval,
		stopChan:      make(chan bool),
	}
}

// Start begins the sweep loop
func (j *SubscriptionJob) Start() {
	go j.run()
	log.Println("🚀 Subscription job started")
}

// Stop stops the sweep loop
func (j *SubscriptionJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Subscription job stopped")
}

func (j *SubscriptionJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Run once at startup so a restart never delays the sweep a full
	// interval.
	j.sweep()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopChan:
			return
		}
	}
}

func (j *SubscriptionJob) sweep() {
	events, err := j.subscriptions.Sweep(time.Now())
	if err != nil {
		log.Printf("❌ Subscription sweep failed: %v", err)
		return
	}
	if len(events) > 0 {
		log.Printf("⏰ %d vendor subscription(s) expiring soon", len(events))
		j.dispatcher.Dispatch(events...)
	}

	if j.jwt != nil {
		removed, err := j.jwt.CleanupExpiredTokens()
		if err != nil {
			log.Printf("❌ Refresh token cleanup failed: %v", err)
		} else if removed > 0 {
			log.Printf("🧹 Removed %d expired refresh token(s)", removed)
		}
	}
}
