package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"assignment-scanner/internal/app"
	"assignment-scanner/internal/config"

	"github.com/google/uuid"
)

// One-shot scan for cron-less environments and local debugging.
func main() {
	configID := flag.String("config", "", "scanning config id (empty runs every active config)")
	timeout := flag.Duration("timeout", 15*time.Minute, "overall scan timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	container, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = container.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var id *uuid.UUID
	if raw := strings.TrimSpace(*configID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			log.Fatalf("invalid -config: %v", err)
		}
		id = &parsed
	}

	results, err := container.Scheduler.TriggerScanNow(ctx, id)
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}

	for _, r := range results {
		fmt.Printf("%s: %d jobs, %d matches, quality %.2f\n",
			r.ConfigName, r.JobsFound, r.MatchesGenerated, r.QualityScore)
		for source, srcErr := range r.SourceErrors {
			fmt.Printf("  %s failed: %v\n", source, srcErr)
		}
	}
}
