package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/mdgraph/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the shared render cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every rendered artifact from the redis cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := stringFlag(cmd, "redis-url", cfg.Cache.RedisURL)
		if url == "" {
			return errors.New("no redis cache configured (set cache.redis_url or --redis-url)")
		}

		store, err := redis.New(cmd.Context(), url)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Purge(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached renders\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)

	cachePurgeCmd.Flags().String("redis-url", "", "Redis URL (default from config)")
}
