// cmd/leadctl/workers.go
package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nexsupply-workers/internal/common/errors"
	"nexsupply-workers/pkg/registry"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the job workers of the lead process",
	Long: `Prints the activity registry and checks it: task types must be unique,
timeouts must parse and every error code must be one the workers raise.`,
	RunE: runWorkers,
}

func init() {
	workersCmd.Flags().String("registry", "configs/activity-registry.json", "path to the activity registry")
	rootCmd.AddCommand(workersCmd)
}

func runWorkers(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("registry")
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TASK_TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tERROR_CODES")
	for _, a := range reg.Activities {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.TaskType, a.Category, a.Timeout, strconv.Itoa(a.Retries), strings.Join(a.ErrorCodes, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	problems := reg.Validate(func(code string) bool {
		_, ok := errors.BPMNErrorMapping[errors.ErrorCode(code)]
		return ok
	})
	for _, p := range problems {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "registry:", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d registry problem(s) in %s", len(problems), path)
	}
	return nil
}
