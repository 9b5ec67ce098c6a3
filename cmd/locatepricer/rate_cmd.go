package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <ticker>",
		Short: "Resolve the current borrow rate for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE:  runRate,
	}
}

func runRate(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resolved, err := a.facade.GetBorrowRate(context.Background(), args[0])
	if err != nil {
		return err
	}

	b, _ := json.MarshalIndent(resolved, "", "  ")
	fmt.Println(string(b))
	return nil
}
