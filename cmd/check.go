package cmd

import (
	"fmt"
	"strconv"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/output"
	"github.com/mj1618/winwatch/internal/rules"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <rule>",
	Short: "Parse a rule and explain how it evaluates",
	Long: `Compile a rule and show, clause by clause, how it evaluates.

With --title and/or --visible the rule is checked against that single
window. Otherwise every current window is checked.

Examples:
  winwatch check '$.title match {Term} and $.visible is true' --title Terminal --visible true
  winwatch check '$.visible is false'`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("title", "", "Title of a hypothetical window to check")
	checkCmd.Flags().String("visible", "", "Visibility of a hypothetical window: true or false")
	checkCmd.Flags().Bool("pretty", false, "Pretty-print output (no-op for YAML)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	rule, err := rules.Parse(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("title") || cmd.Flags().Changed("visible") {
		w, err := windowFromFlags(cmd)
		if err != nil {
			return err
		}
		return output.Print(checkWindow(rule, w))
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
	windows := reg.Snapshot().Windows
	results := make([]output.CheckResult, 0, len(windows))
	for _, w := range windows {
		results = append(results, checkWindow(rule, w))
	}
	return output.Print(results)
}

func windowFromFlags(cmd *cobra.Command) (model.Window, error) {
	title, _ := cmd.Flags().GetString("title")
	w := model.Window{Title: title}
	if v, _ := cmd.Flags().GetString("visible"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return w, fmt.Errorf("invalid --visible %q: %w", v, err)
		}
		w.Visible = b
	}
	return w, nil
}

func checkWindow(rule *rules.Rule, w model.Window) output.CheckResult {
	match, clauses := rule.Explain(rules.WindowRecord(w))
	return output.CheckResult{
		Rule:    rule.String(),
		Window:  w,
		Match:   match,
		Clauses: clauses,
	}
}
