package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-components/pkg/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Cross-check two labelings of the same node set",
	Long: `Loads two (node, label) output files and checks that they describe the
same partition: every group of nodes sharing a label in one file must map
to exactly one label in the other, in both directions. Exits non-zero on
the first missing node or label mismatch.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringP("first", "1", "", "first labeling file")
	verifyCmd.Flags().StringP("second", "2", "", "second labeling file")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	first, _ := cmd.Flags().GetString("first")
	second, _ := cmd.Flags().GetString("second")
	if first == "" || second == "" {
		return &usageError{msg: "verify needs both -1 and -2 labeling files"}
	}

	if err := verify.Files(first, second); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "labelings agree")
	return nil
}
