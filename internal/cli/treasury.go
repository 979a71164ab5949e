package cli

import (
	"fmt"

	"github.com/holdfast-io/holdfast/internal/daemon"
	"github.com/spf13/cobra"
)

func init() {
	treasuryWithdrawCmd.Flags().StringVar(&treasuryAs, "as", "", "Acting principal (must be the treasury owner)")
	treasuryCmd.AddCommand(treasuryWithdrawCmd)
	rootCmd.AddCommand(treasuryCmd)
}

var treasuryAs string

var treasuryCmd = &cobra.Command{
	Use:   "treasury",
	Short: "Show accrued platform earnings",
	RunE:  runTreasury,
}

func runTreasury(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	treasury, err := d.Escrow.Treasury(cmd.Context())
	if err != nil {
		return err
	}

	owner := string(treasury.Owner)
	if owner == "" {
		owner = "- (withdrawals disabled)"
	}
	fmt.Printf("Owner:      %s\n", owner)
	fmt.Printf("Balance:    %d\n", treasury.Balance)
	fmt.Printf("Accrued:    %d\n", treasury.LifetimeAccrued)
	fmt.Printf("Withdrawn:  %d\n", treasury.LifetimeWithdrawn)

	return nil
}

var treasuryWithdrawCmd = &cobra.Command{
	Use:   "withdraw AMOUNT",
	Short: "Withdraw accrued fees to the owner's account",
	Args:  cobra.ExactArgs(1),
	RunE:  runTreasuryWithdraw,
}

func runTreasuryWithdraw(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(treasuryAs)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	treasury, err := d.Escrow.WithdrawTreasury(cmd.Context(), caller, amount)
	if err != nil {
		return err
	}

	fmt.Printf("Withdrew %d to %s (remaining balance %d)\n", amount, caller, treasury.Balance)
	return nil
}
