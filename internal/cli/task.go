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
	taskCreateCmd.Flags().StringVar(&taskAs, "as", "", "Acting principal")
	taskConfirmCmd.Flags().StringVar(&taskAs, "as", "", "Acting principal")
	taskCancelCmd.Flags().StringVar(&taskAs, "as", "", "Acting principal")
	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (PENDING, COMPLETED, CANCELLED)")
	taskListCmd.Flags().IntVar(&taskLimit, "limit", 50, "Maximum rows to list")
	taskCmd.AddCommand(taskCreateCmd, taskConfirmCmd, taskCancelCmd, taskShowCmd, taskListCmd)
	rootCmd.AddCommand(taskCmd)
}

var (
	taskAs     string
	taskStatus string
	taskLimit  int
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create and settle escrowed tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create PROVIDER AMOUNT",
	Short: "Escrow AMOUNT for a task assigned to PROVIDER",
	Long: `Escrow AMOUNT (in base units) for a task assigned to PROVIDER.
The acting principal funds the escrow and becomes the requester.

Example:
  holdfast task create bob 5000 --as alice`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskCreate,
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(taskAs)
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

	task, err := d.Escrow.CreateTask(cmd.Context(), caller, domain.Principal(args[0]), amount)
	if err != nil {
		return err
	}

	fmt.Printf("Created task %d: %s -> %s, amount %d (fee %d)\n",
		task.ID, task.Requester, task.Provider, task.Amount, task.Fee)
	return nil
}

var taskConfirmCmd = &cobra.Command{
	Use:   "confirm ID",
	Short: "Confirm task completion as one of the two parties",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskConfirm,
}

func runTaskConfirm(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(taskAs)
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

	task, err := d.Escrow.ConfirmTask(cmd.Context(), id, caller)
	if err != nil {
		return err
	}

	if task.Status == domain.StatusCompleted {
		fmt.Printf("Task %d settled: %d paid to %s, fee %d retained\n",
			task.ID, task.Payout(), task.Provider, task.Fee)
	} else {
		fmt.Printf("Task %d confirmation recorded (requester=%t provider=%t)\n",
			task.ID, task.RequesterConfirmed, task.ProviderConfirmed)
	}
	return nil
}

var taskCancelCmd = &cobra.Command{
	Use:   "cancel ID",
	Short: "Cancel a pending task and refund the requester",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskCancel,
}

func runTaskCancel(cmd *cobra.Command, args []string) error {
	caller, err := requireActor(taskAs)
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

	task, err := d.Escrow.CancelTask(cmd.Context(), id, caller)
	if err != nil {
		return err
	}

	fmt.Printf("Task %d cancelled: %d refunded to %s\n", task.ID, task.Amount, task.Requester)
	return nil
}

var taskShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show detailed information about a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	task, err := d.Escrow.GetTask(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:         %d\n", task.ID)
	fmt.Printf("Requester:  %s\n", task.Requester)
	fmt.Printf("Provider:   %s\n", task.Provider)
	fmt.Printf("Amount:     %d\n", task.Amount)
	fmt.Printf("Fee:        %d\n", task.Fee)
	fmt.Printf("Payout:     %d\n", task.Payout())
	fmt.Printf("Status:     %s\n", task.Status)
	fmt.Printf("Confirmed:  requester=%t provider=%t\n", task.RequesterConfirmed, task.ProviderConfirmed)
	fmt.Printf("Created:    %s (seq %d)\n", task.CreatedAt.Format("2006-01-02 15:04:05"), task.CreatedSeq)
	fmt.Printf("Settled:    %s\n", formatTime(task.SettledAt))

	return nil
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, newest first",
	RunE:    runTaskList,
}

func runTaskList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	tasks, err := d.Escrow.ListTasks(cmd.Context(), domain.EscrowStatus(taskStatus), taskLimit)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUESTER\tPROVIDER\tAMOUNT\tFEE\tSTATUS\tCONFIRMS\tCREATED")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			t.ID,
			t.Requester,
			t.Provider,
			t.Amount,
			t.Fee,
			t.Status,
			confirmMarks(t),
			t.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

// confirmMarks renders the two confirmation flags compactly.
func confirmMarks(t domain.Task) string {
	marks := ""
	if t.RequesterConfirmed {
		marks += "R"
	}
	if t.ProviderConfirmed {
		marks += "P"
	}
	if marks == "" {
		return "-"
	}
	return marks
}
