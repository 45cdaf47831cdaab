package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/aretw0/shaperig/pkg/adapters/http"
	"github.com/aretw0/shaperig/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/shaperig/pkg/adapters/redis"
	"github.com/aretw0/shaperig/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the definition HTTP server",
	Long:  `Serves stored rig definitions over a JSON API, with prometheus metrics under /metrics. Definitions live in memory by default, or in Redis with --redis.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")

		var store ports.DefinitionStore
		if redisAddr != "" {
			store = redisAdapter.New(redisAddr, "", 0)
			fmt.Printf("Using Redis definition store at %s\n", redisAddr)
		} else {
			store = memory.NewStore()
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(store),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Shaperig Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown failed: %v\n", err)
				srv.Close()
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for the definition store (empty = in-memory)")
	rootCmd.AddCommand(serveCmd)
}
