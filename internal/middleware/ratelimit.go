package middleware

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/time/rate"

	"sales-dashboard/internal/config"
)

const (
	sweepInterval = time.Minute
	clientIdleTTL = 3 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address. Buckets idle for
// longer than clientIdleTTL are dropped by a scheduled sweep.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	config    config.SecurityConfig
	scheduler *gocron.Scheduler
	now       func() time.Time
}

func NewRateLimiter(cfg config.SecurityConfig) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		config:  cfg,
		now:     time.Now,
	}
}

// Start schedules the idle-client sweep.
func (rl *RateLimiter) Start() error {
	rl.scheduler = gocron.NewScheduler(time.UTC)
	if _, err := rl.scheduler.Every(sweepInterval).WaitForSchedule().Do(func() { rl.Sweep() }); err != nil {
		return err
	}
	rl.scheduler.StartAsync()
	return nil
}

func (rl *RateLimiter) Stop() {
	if rl.scheduler != nil {
		rl.scheduler.Stop()
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	if !rl.config.EnableRateLimit {
		return true
	}

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(rl.config.RateLimitRPS), rl.config.RateLimitBurst)}
		rl.clients[ip] = c
	}
	c.lastSeen = rl.now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// Sweep drops idle clients and reports how many were removed.
func (rl *RateLimiter) Sweep() int {
	cutoff := rl.now().Add(-clientIdleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
