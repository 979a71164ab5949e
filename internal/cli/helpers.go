package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/holdfast-io/holdfast/internal/domain"
)

// requireActor validates the --as flag shared by mutating commands.
func requireActor(as string) (domain.Principal, error) {
	if as == "" {
		return "", fmt.Errorf("missing --as PRINCIPAL (the acting account)")
	}
	return domain.Principal(as), nil
}

// parseAmount parses a base-unit amount argument.
func parseAmount(arg string) (int64, error) {
	amount, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", arg)
	}
	return amount, nil
}

// parseID parses a numeric record id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// formatTime renders a timestamp for display, "-" when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
