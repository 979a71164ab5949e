package cli

import (
	"fmt"

	"github.com/holdfast-io/holdfast/internal/daemon"
	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	tipCmd.Flags().StringVar(&tipAs, "as", "", "Acting principal")
	rootCmd.AddCommand(tipCmd)
}

var tipAs string

var tipCmd = &cobra.Command{
	Use:   "tip RECIPIENT AMOUNT",
	Short: "Send a direct tip, minus the platform fee",
	Long: `Send AMOUNT (in base units) to RECIPIENT. The platform fee is deducted
from the amount; the recipient gets the rest immediately.

Example:
  holdfast tip bob 100 --as alice`,
	Args: cobra.ExactArgs(2),
	RunE: runTip,
}

func runTip(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(tipAs)
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	receipt, err := d.Escrow.SendTip(cmd.Context(), caller, domain.Principal(args[0]), amount)
	if err != nil {
		return err
	}

	fmt.Printf("Tipped %s: %d net, %d fee (ref %s)\n", receipt.To, receipt.Net, receipt.Fee, receipt.Ref)
	return nil
}
