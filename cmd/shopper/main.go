package main

import (
	"context"
	"flag"
	"net"
	"os"
	"time"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/redis"
	"github.com/ikkim/storefront-backend/pkg/storefront"
)

func main() {
	apiURL := flag.String("api", "http://localhost:5000", "storefront API base URL")
	device := flag.String("device", "", "device id for the guest cart kept in Redis")
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for the guest cart")
	guestTTL := flag.Duration("guest-ttl", 30*24*time.Hour, "how long an untouched guest cart is kept")
	merge := flag.Bool("merge", false, "merge the guest cart into the account on login")
	reconcile := flag.Bool("reconcile", false, "re-fetch the server cart when a cart call fails")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger.Initialize(logger.Config{Level: level, Format: "console", Output: os.Stderr, EnableColor: true})

	ctx := context.Background()

	client, err := storefront.NewClient(*apiURL)
	if err != nil {
		logger.Fatal("Invalid API URL", err)
	}

	guest := guestStorage(ctx, *device, *redisAddr, *guestTTL)

	opts := storefront.StoreOptions{ReconcileOnFailure: *reconcile}
	if *merge {
		opts.MergePolicy = storefront.MergeByProduct
	}
	store, err := storefront.NewStore(ctx, client, guest, opts)
	if err != nil {
		logger.Fatal("Failed to load guest cart", err)
	}

	sh := newShell(client, store, os.Stdout)
	if err := sh.run(ctx, os.Stdin); err != nil {
		logger.Fatal("Shell stopped", err)
	}
}

// guestStorage falls back to process memory when no device is given or Redis
// cannot be reached.
func guestStorage(ctx context.Context, device, addr string, ttl time.Duration) storefront.GuestStorage {
	if device == "" {
		return storefront.NewMemoryGuestStorage()
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Warn("Invalid Redis address, guest cart kept in memory", map[string]interface{}{
			"addr":  addr,
			"error": err.Error(),
		})
		return storefront.NewMemoryGuestStorage()
	}

	client, err := redis.Connect(ctx, &config.RedisConfig{Host: host, Port: port})
	if err != nil {
		logger.Warn("Redis unavailable, guest cart kept in memory", map[string]interface{}{
			"error": err.Error(),
		})
		return storefront.NewMemoryGuestStorage()
	}
	return storefront.NewRedisGuestStorage(client, device, ttl)
}
