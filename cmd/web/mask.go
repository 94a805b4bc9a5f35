package main

import (
	"encoding/json"
	"fmt"

	"lunara/internal/services"

	"github.com/spf13/cobra"
)

var maskers = map[string]func(string) string{
	"card":   services.FormatCardNumber,
	"expiry": services.FormatExpiry,
	"cvv":    services.FormatCVV,
}

// NewMaskCommand applies the payment form input mask to a value.
func NewMaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "mask <card|expiry|cvv> <value>",
		Short:     "Apply the payment form input mask to a value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"card", "expiry", "cvv"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, ok := maskers[args[0]]
			if !ok {
				return fmt.Errorf("unknown field %q: must be card, expiry or cvv", args[0])
			}
			out := mask(args[1])
			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"field": args[0], "value": out})
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}
