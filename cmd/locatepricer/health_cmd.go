package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check cache and database connectivity",
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out := map[string]interface{}{
		"cache_healthy": a.cache.Healthy(ctx),
		"cache_stats":   a.cache.Stats(),
		"database":      a.dbMgr.Health().Health(ctx),
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
	return nil
}
