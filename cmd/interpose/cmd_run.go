package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/manifest"
)

var runCmd = &cobra.Command{
	Use:   "run <manifest>",
	Short: "Apply a manifest and invoke members",
	Long: `Apply a manifest and invoke members.

Call expressions (--call):
  Type#member [args...]    Call an instance member on a new instance
  Type.member [args...]    Call a static member
  Arguments follow shell quoting rules.`,
	Example: `  interpose run greeter.yaml --call 'Greeter#foo' --call 'Greeter.bar'
  interpose run echo.yaml --call 'Echo#say "hello world"'`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArray("call", nil, "Call expression (can be repeated)")
	runCmd.Flags().String("journal", "", "Append definition phases to this SQLite journal")
	viper.BindPFlag("run.call", runCmd.Flags().Lookup("call"))
	viper.BindPFlag("run.journal", runCmd.Flags().Lookup("journal"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, logger, args[0], viper.GetString("run.journal"))
	if err != nil {
		return err
	}
	defer s.Close()

	calls := viper.GetStringSlice("run.call")
	if len(calls) == 0 {
		for _, t := range s.targets {
			fmt.Fprintf(cmd.ErrOrStderr(), "defined %s\n", t.Name())
		}
		return nil
	}

	failed := runCalls(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), s, calls, stdoutIsTerminal())
	if failed > 0 {
		return commandExit(1)
	}
	return nil
}

// runCalls evaluates each expression in order. Values are labelled with
// their expression when the output is a terminal and printed bare otherwise.
func runCalls(ctx context.Context, w, errw io.Writer, s *session, calls []string, labelled bool) int {
	failed := 0
	for _, expr := range calls {
		inv, err := manifest.ParseCall(expr)
		if err == nil {
			var v any
			if v, err = inv.Invoke(ctx, s.host); err == nil {
				if labelled {
					fmt.Fprintf(w, "%s => %v\n", inv, v)
				} else {
					fmt.Fprintln(w, v)
				}
				continue
			}
		}
		failed++
		fmt.Fprintf(errw, "Error: %v\n", errx.With(ErrCall, " %s: %w", expr, err))
	}
	return failed
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
