// Command components labels the connected components of a large undirected
// graph read as an edge list, using iterative label propagation over a
// fixed-capacity, optionally disk-backed edge array.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-components/pkg/cc"
)

var rootCmd = &cobra.Command{
	Use:           "components",
	Short:         "Out-of-core connected components labeler",
	Long:          "components labels the connected components of an undirected graph of 32-bit node ids, converging node labels toward the minimum reachable id without ever holding more than a fixed-capacity edge array in memory.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to distinct exit codes, so callers can tell a
// misconfiguration from a resource failure, bad input or an internal
// inconsistency. Success is always 0 and failure never is.
func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return 1
	}
	switch cc.Classify(err) {
	case cc.KindConfig:
		return 1
	case cc.KindResource:
		return 2
	case cc.KindInput:
		return 3
	case cc.KindInconsistency:
		return 4
	default:
		return 1
	}
}

// usageError marks command-line level failures (bad flags, bad file paths
// for verify) that have no pipeline error kind.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }
