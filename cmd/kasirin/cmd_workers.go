package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/app/services"
	"github.com/kasirin/kasirin/config"
	"github.com/kasirin/kasirin/pkg/queue"
)

// kasirin queue:work runs queue workers standalone, outside the API server.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}

		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
		})
		if err := rdb.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("queue:work needs redis at %s: %w", config.RedisAddr(), err)
		}
		queue.SetDriver(queue.NewRedisDriver(rdb))
		queue.UseDB(db)
		services.InitJobs(repositories.NewCustomerRepository(db))

		workers, _ := cmd.Flags().GetInt("workers")
		ctx, stop := context.WithCancel(cmd.Context())
		defer stop()
		queue.StartWorkers(ctx, workers)
		fmt.Printf("▶  Processing jobs with %d workers. Ctrl-C to stop.\n", workers)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		fmt.Println("◀  Stopping workers…")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().Int("workers", 4, "number of concurrent workers")
}
