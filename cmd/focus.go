package cmd

import (
	"fmt"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/output"
	"github.com/mj1618/winwatch/internal/platform"
	"github.com/spf13/cobra"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Bring a window to the foreground",
	Long:  "Focus the window named by --handle, or the first window matching the rule.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWindowAction(cmd, "focus", func(m platform.WindowManager, h model.Handle) error {
			return m.BringToFront(h)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Make a hidden or minimized window visible",
	Long:  "Show the window named by --handle, or the first window matching the rule.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWindowAction(cmd, "show", func(m platform.WindowManager, h model.Handle) error {
			return m.Show(h)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{focusCmd, showCmd} {
		rootCmd.AddCommand(c)
		addRuleFlags(c)
		c.Flags().String("handle", "", "Target window handle (decimal or 0x hex)")
	}
}

func runWindowAction(cmd *cobra.Command, action string, fn func(platform.WindowManager, model.Handle) error) error {
	rule, all, err := getRuleFlags(cmd)
	if err != nil {
		return err
	}
	handle, _ := cmd.Flags().GetString("handle")

	provider, err := newProvider()
	if err != nil {
		return err
	}
	defer provider.Shutdown()

	if provider.Manager == nil {
		return fmt.Errorf("window management not available on this platform")
	}

	target, err := resolveTarget(commandContext(cmd), provider, handle, rule, all)
	if err != nil {
		return err
	}
	if err := fn(provider.Manager, target.Handle); err != nil {
		return fmt.Errorf("%s %s: %w", action, target.Handle, err)
	}
	logger.Debug("window action", "action", action, "handle", target.Handle, "title", target.Title)

	return output.Print(output.ActionResult{
		OK:     true,
		Action: action,
		Window: &target,
	})
}
