package cli

import (
	"fmt"

	"github.com/holdfast-io/holdfast/internal/daemon"
	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine totals and the fund-safety check",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	taskCounts, err := d.DB.CountTasksByStatus()
	if err != nil {
		return err
	}
	reviewCounts, err := d.DB.CountReviewsByStatus()
	if err != nil {
		return err
	}
	pending, err := d.DB.PendingGross()
	if err != nil {
		return err
	}
	treasury, err := d.DB.Treasury()
	if err != nil {
		return err
	}
	vault, err := d.Book.Balance(cmd.Context(), domain.AccountVault)
	if err != nil {
		return err
	}

	fmt.Printf("Node:          %s\n", d.NodeID)
	fmt.Printf("Tasks:         %d pending, %d completed, %d cancelled\n",
		taskCounts[domain.StatusPending], taskCounts[domain.StatusCompleted], taskCounts[domain.StatusCancelled])
	fmt.Printf("Reviews:       %d pending, %d completed, %d cancelled\n",
		reviewCounts[domain.StatusPending], reviewCounts[domain.StatusCompleted], reviewCounts[domain.StatusCancelled])
	fmt.Printf("Pending gross: %d\n", pending)
	fmt.Printf("Treasury:      %d (accrued %d, withdrawn %d)\n",
		treasury.Balance, treasury.LifetimeAccrued, treasury.LifetimeWithdrawn)
	fmt.Printf("Vault:         %d\n", vault)

	// Funds held must cover every pending escrow plus the treasury.
	if vault == pending+treasury.Balance {
		fmt.Println("Conservation:  ok (vault = pending + treasury)")
	} else {
		fmt.Printf("Conservation:  DRIFT (vault %d != pending %d + treasury %d)\n",
			vault, pending, treasury.Balance)
	}
	return nil
}
