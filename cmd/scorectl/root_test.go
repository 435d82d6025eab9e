package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"calculate", "reload", "export", "migrate"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestCalculateCommand_Args(t *testing.T) {
	if err := calculateCmd.Args(calculateCmd, nil); err == nil {
		t.Error("calculate without student id should fail")
	}
	if err := calculateCmd.Args(calculateCmd, []string{"stu-1"}); err != nil {
		t.Errorf("calculate with one id should pass: %v", err)
	}
}

func TestCalculateCommand_Flags(t *testing.T) {
	for _, name := range []string{"university", "year", "recalculate", "json"} {
		if calculateCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s missing", name)
		}
	}
	if exportCmd.Flags().Lookup("out") == nil {
		t.Error("export flag --out missing")
	}
}

func TestCommandContext_Default(t *testing.T) {
	if commandContext(&cobra.Command{}) == nil {
		t.Fatal("expected non-nil context")
	}
}
