package cmd

import (
	"github.com/mj1618/winwatch/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List top-level windows that match the rule",
	Long: `Enumerate top-level windows once and print those accepted by the rule.

Without --rule the configured rule is used (by default: visible windows whose
title contains a CJK ideograph). --all prints every window.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	addRuleFlags(listCmd)
	listCmd.Flags().Bool("pretty", false, "Pretty-print output (no-op for YAML)")
}

func runList(cmd *cobra.Command, args []string) error {
	rule, all, err := getRuleFlags(cmd)
	if err != nil {
		return err
	}

	provider, err := newProvider()
	if err != nil {
		return err
	}
	defer provider.Shutdown()

	reg := newRegistry(provider)
	if err := reg.Refresh(commandContext(cmd)); err != nil {
		return err
	}

	windows, err := selectWindows(reg, rule, all)
	if err != nil {
		return err
	}

	snap := reg.Snapshot()
	result := output.ListResult{
		Seq:     snap.Seq,
		TS:      snap.TakenAt.Unix(),
		Windows: windows,
	}
	if !all {
		result.Rule = reg.Rule().String()
		if rule != nil {
			result.Rule = rule.String()
		}
	}
	return output.Print(result)
}
