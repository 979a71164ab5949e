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
	reviewCreateCmd.Flags().StringVar(&reviewAs, "as", "", "Acting principal")
	reviewCompleteCmd.Flags().StringVar(&reviewAs, "as", "", "Acting principal")
	reviewCancelCmd.Flags().StringVar(&reviewAs, "as", "", "Acting principal")
	reviewListCmd.Flags().StringVar(&reviewStatus, "status", "", "Filter by status (PENDING, COMPLETED, CANCELLED)")
	reviewListCmd.Flags().IntVar(&reviewLimit, "limit", 50, "Maximum rows to list")
	reviewCmd.AddCommand(reviewCreateCmd, reviewCompleteCmd, reviewCancelCmd, reviewShowCmd, reviewListCmd)
	rootCmd.AddCommand(reviewCmd)
}

var (
	reviewAs     string
	reviewStatus string
	reviewLimit  int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Create and settle code-review bounties",
}

var reviewCreateCmd = &cobra.Command{
	Use:   "create REVIEWER BOUNTY",
	Short: "Escrow BOUNTY for a review assigned to REVIEWER",
	Long: `Escrow BOUNTY (in base units) for a code review assigned to REVIEWER.
The acting principal funds the bounty and becomes the requester; only the
requester can later release or cancel it.

Example:
  holdfast review create rex 2000 --as alice`,
	Args: cobra.ExactArgs(2),
	RunE: runReviewCreate,
}

func runReviewCreate(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(reviewAs)
	if err != nil {
		return err
	}
	bounty, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	review, err := d.Escrow.CreateReview(cmd.Context(), caller, domain.Principal(args[0]), bounty)
	if err != nil {
		return err
	}

	fmt.Printf("Created review %d: %s -> %s, bounty %d (fee %d)\n",
		review.ID, review.Requester, review.Reviewer, review.Bounty, review.Fee)
	return nil
}

var reviewCompleteCmd = &cobra.Command{
	Use:   "complete ID",
	Short: "Release a review bounty to the reviewer",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewComplete,
}

func runReviewComplete(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(reviewAs)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	review, err := d.Escrow.CompleteReview(cmd.Context(), id, caller)
	if err != nil {
		return err
	}

	fmt.Printf("Review %d settled: %d paid to %s, fee %d retained\n",
		review.ID, review.Payout(), review.Reviewer, review.Fee)
	return nil
}

var reviewCancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel a pending review and refund the requester",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewCancel,
}

func runReviewCancel(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(reviewAs)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	review, err := d.Escrow.CancelReview(cmd.Context(), id, caller)
	if err != nil {
		return err
	}

	fmt.Printf("Review %d cancelled: %d refunded to %s\n", review.ID, review.Bounty, review.Requester)
	return nil
}

var reviewShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show detailed information about a review",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewShow,
}

func runReviewShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	review, err := d.Escrow.GetReview(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:         %d\n", review.ID)
	fmt.Printf("Requester:  %s\n", review.Requester)
	fmt.Printf("Reviewer:   %s\n", review.Reviewer)
	fmt.Printf("Bounty:     %d\n", review.Bounty)
	fmt.Printf("Fee:        %d\n", review.Fee)
	fmt.Printf("Payout:     %d\n", review.Payout())
	fmt.Printf("Status:     %s\n", review.Status)
	fmt.Printf("Created:    %s (seq %d)\n", review.CreatedAt.Format("2006-01-02 15:04:05"), review.CreatedSeq)
	fmt.Printf("Settled:    %s\n", formatTime(review.SettledAt))

	return nil
}

var reviewListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reviews, newest first",
	RunE:    runReviewList,
}

func runReviewList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	reviews, err := d.Escrow.ListReviews(cmd.Context(), domain.EscrowStatus(reviewStatus), reviewLimit)
	if err != nil {
		return err
	}

	if len(reviews) == 0 {
		fmt.Println("No reviews found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUESTER\tREVIEWER\tBOUNTY\tFEE\tSTATUS\tCREATED")
	for _, rv := range reviews {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			rv.ID,
			rv.Requester,
			rv.Reviewer,
			rv.Bounty,
			rv.Fee,
			rv.Status,
			rv.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}
