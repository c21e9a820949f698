package main

import (
	"fmt"

	"subscription-manager/internal/subscription"

	"github.com/spf13/cobra"
)

func newUpgradeCmd() *cobra.Command {
	return newChangeCmd(subscription.Upgrade, "Upgrade a customer to basic or premium")
}

func newDowngradeCmd() *cobra.Command {
	return newChangeCmd(subscription.Downgrade, "Downgrade a customer to basic or free")
}

// newChangeCmd prints one outcome line and exits 0 for every outcome, including refused
// transitions. Argument and connectivity errors print their message and exit 1.
func newChangeCmd(direction subscription.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   direction.String() + " <customer_id> <subscription_level>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			customerID, level := args[0], args[1]

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			outcome, err := a.changer.ChangeSubscription(cmd.Context(), direction, customerID, level)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), subscription.ErrorMessage(direction, err))
				return &reportedError{err: err}
			}

			fmt.Fprintln(cmd.OutOrStdout(), subscription.Message(direction, outcome, customerID, level))
			return nil
		},
	}
}
