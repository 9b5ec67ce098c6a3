package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sawpanic/locatepricer/internal/facade"
)

func newCalculateCmd() *cobra.Command {
	var ticker, clientID string
	var positionValue float64
	var loanDays int

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the total locate fee for a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculate(ticker, clientID, positionValue, loanDays)
		},
	}

	cmd.Flags().StringVar(&ticker, "ticker", "", "stock ticker (required)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "client id (required)")
	cmd.Flags().Float64Var(&positionValue, "position-value", 0, "position value in dollars (required)")
	cmd.Flags().IntVar(&loanDays, "loan-days", 0, "loan duration in days (required)")
	cmd.MarkFlagRequired("ticker")
	cmd.MarkFlagRequired("client-id")
	cmd.MarkFlagRequired("position-value")
	cmd.MarkFlagRequired("loan-days")

	return cmd
}

func runCalculate(ticker, clientID string, positionValue float64, loanDays int) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	breakdown, err := a.facade.CalculateFee(context.Background(), facade.CalculateFeeRequest{
		RequestID:     uuid.New().String(),
		Ticker:        ticker,
		PositionValue: decimal.NewFromFloat(positionValue),
		LoanDays:      loanDays,
		ClientID:      clientID,
	})
	if err != nil {
		return err
	}

	b, _ := json.MarshalIndent(breakdown, "", "  ")
	fmt.Println(string(b))
	return nil
}
