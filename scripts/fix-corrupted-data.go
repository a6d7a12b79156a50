package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	loothistory "github.com/KirkDiggler/endguard/internal/repositories/loot_history"
	"github.com/KirkDiggler/endguard/internal/repositories/sessions"
)

const (
	historyPattern = "loot_history:*"
	snapshotKey    = "endguard:session_snapshot"
)

type corruptEntry struct {
	key   string
	value string
}

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning loot history for corrupted entries...")

	iter := client.Scan(ctx, 0, historyPattern, 0).Iterator()

	var corrupted []corruptEntry
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()

		values, err := client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		for _, value := range values {
			checkedCount++
			var entry loothistory.Entry
			if err := json.Unmarshal([]byte(value), &entry); err != nil || entry.World == "" {
				fmt.Printf("✗ Corrupted entry in %s\n", key)
				corrupted = append(corrupted, corruptEntry{key: key, value: value})
			}
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	snapshotCorrupt := false
	if data, err := client.Get(ctx, snapshotKey).Result(); err == nil {
		var snapshot sessions.Snapshot
		if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
			fmt.Printf("✗ Corrupted session snapshot in %s\n", snapshotKey)
			snapshotCorrupt = true
		}
	} else if err != redis.Nil {
		fmt.Printf("Error reading %s: %v\n", snapshotKey, err)
	}

	fmt.Printf("\nChecked %d history entries, found %d corrupted\n", checkedCount, len(corrupted))

	if len(corrupted) == 0 && !snapshotCorrupt {
		fmt.Println("No corrupted data found!")
		return
	}

	fmt.Print("\nDo you want to DELETE the corrupted data? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" {
		fmt.Println("Aborted - no changes made")
		return
	}

	for _, c := range corrupted {
		if err := client.LRem(ctx, c.key, 0, c.value).Err(); err != nil {
			fmt.Printf("Failed to remove entry from %s: %v\n", c.key, err)
		} else {
			fmt.Printf("Removed entry from %s\n", c.key)
		}
	}
	if snapshotCorrupt {
		if err := client.Del(ctx, snapshotKey).Err(); err != nil {
			fmt.Printf("Failed to delete %s: %v\n", snapshotKey, err)
		} else {
			fmt.Printf("Deleted %s\n", snapshotKey)
		}
	}
	fmt.Println("\nCleanup complete!")
}
