package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/optbazar/optbazar/cmd/optbazarctl/cli"
)

const usage = `usage:
  optbazarctl hash-password          read a password from stdin and print its bcrypt hash
  optbazarctl jobs stats             show default queue counters
  optbazarctl jobs trigger <job>     enqueue a job (stale-scan)`

func main() {
	redisAddr := flag.String("redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "redis address")
	staleAge := flag.Duration("stale-age", 24*time.Hour, "age threshold for stale-scan")
	flag.Parse()

	if err := run(flag.Args(), *redisAddr, *staleAge); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, redisAddr string, staleAge time.Duration) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", usage)
	}
	switch args[0] {
	case "hash-password":
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		hash, err := cli.HashPassword(strings.TrimRight(line, "\r\n"))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	case "jobs":
		if len(args) < 2 {
			return fmt.Errorf("%s", usage)
		}
		jobsCLI := cli.NewJobsCLI(redisAddr)
		defer jobsCLI.Close()
		switch args[1] {
		case "stats":
			stats, err := jobsCLI.InspectQueue()
			if err != nil {
				return err
			}
			fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
				stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
			return nil
		case "trigger":
			if len(args) < 3 {
				return fmt.Errorf("%s", usage)
			}
			info, err := jobsCLI.Trigger(context.Background(), args[2], staleAge)
			if err != nil {
				return err
			}
			fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return nil
		}
	}
	return fmt.Errorf("%s", usage)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
