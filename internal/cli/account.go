package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/holdfast-io/holdfast/internal/daemon"
	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	accountHistoryCmd.Flags().IntVar(&accountLimit, "limit", 50, "Maximum rows to list")
	accountCmd.AddCommand(accountDepositCmd, accountBalanceCmd, accountHistoryCmd)
	rootCmd.AddCommand(accountCmd)
}

var accountLimit int

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Fund and inspect ledger accounts",
}

var accountDepositCmd = &cobra.Command{
	Use:   "deposit PRINCIPAL AMOUNT",
	Short: "Book an external inflow onto an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountDeposit,
}

func runAccountDeposit(cmd *cobra.Command, args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ref, err := d.Escrow.Deposit(cmd.Context(), domain.Principal(args[0]), amount)
	if err != nil {
		return err
	}

	fmt.Printf("Deposited %d to %s (ref %s)\n", amount, args[0], ref)
	return nil
}

var accountBalanceCmd = &cobra.Command{
	Use:   "balance PRINCIPAL",
	Short: "Show an account balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountBalance,
}

func runAccountBalance(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	balance, err := d.Escrow.BalanceOf(cmd.Context(), domain.Principal(args[0]))
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d\n", args[0], balance)
	return nil
}

var accountHistoryCmd = &cobra.Command{
	Use:   "history PRINCIPAL",
	Short: "Show an account's ledger entries, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountHistory,
}

func runAccountHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.Escrow.HistoryOf(cmd.Context(), domain.Principal(args[0]), accountLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No ledger entries found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tTYPE\tAMOUNT\tBALANCE\tMEMO\tAT")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			e.Kind,
			e.Type,
			e.Amount,
			e.Balance,
			e.Memo,
			e.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}
