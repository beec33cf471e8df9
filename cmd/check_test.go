package cmd

import (
	"testing"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/rules"
	"github.com/spf13/cobra"
)

func TestCheckWindow(t *testing.T) {
	rule := rules.MustParse(rules.DefaultRuleText)

	got := checkWindow(rule, model.Window{Title: "Terminal", Visible: true})
	if got.Match {
		t.Error("Terminal should not match the default rule")
	}
	if len(got.Clauses) != 2 {
		t.Fatalf("expected 2 clause results, got %d", len(got.Clauses))
	}
	if !got.Clauses[0].Evaluated || got.Clauses[0].Passed {
		t.Errorf("first clause should run and fail: %+v", got.Clauses[0])
	}
	if got.Clauses[1].Evaluated {
		t.Error("second clause should be skipped after the first fails")
	}

	got = checkWindow(rule, model.Window{Title: "微信", Visible: true})
	if !got.Match {
		t.Errorf("expected match: %+v", got)
	}
	if got.Rule != rules.DefaultRuleText {
		t.Errorf("unexpected rule text %q", got.Rule)
	}
}

func TestWindowFromFlags(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		c := &cobra.Command{Use: "check"}
		c.Flags().String("title", "", "")
		c.Flags().String("visible", "", "")
		if err := c.ParseFlags(args); err != nil {
			t.Fatal(err)
		}
		return c
	}

	w, err := windowFromFlags(newCmd("--title", "微信", "--visible", "true"))
	if err != nil {
		t.Fatal(err)
	}
	if w.Title != "微信" || !w.Visible {
		t.Errorf("unexpected window %+v", w)
	}

	if _, err := windowFromFlags(newCmd("--visible", "maybe")); err == nil {
		t.Error("expected error for --visible maybe")
	}
}

func TestCheckCommand_RequiresRule(t *testing.T) {
	if err := checkCmd.Args(checkCmd, nil); err == nil {
		t.Error("check should require a rule argument")
	}
}
