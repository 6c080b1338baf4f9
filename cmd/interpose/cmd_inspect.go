package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/interpose/internal/errx"
	"github.com/jingkaihe/interpose/pkg/lifecycle"
	"github.com/jingkaihe/interpose/pkg/member"
)

type memberRow struct {
	Name        string `json:"name"`
	Level       string `json:"level"`
	Wrapped     bool   `json:"wrapped"`
	Interceptor string `json:"interceptor,omitempty"`
	Original    string `json:"original"`
}

type targetOutput struct {
	Name        string            `json:"name"`
	ID          uuid.UUID         `json:"id"`
	Phase       lifecycle.Phase   `json:"phase"`
	Completions int               `json:"completions"`
	Members     []memberRow       `json:"members"`
	History     []lifecycle.Entry `json:"history,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <manifest>",
	Short: "Apply a manifest and print each type's member table",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	inspectCmd.Flags().String("journal", "", "Append definition phases to this SQLite journal and include its history")
	viper.BindPFlag("inspect.json", inspectCmd.Flags().Lookup("json"))
	viper.BindPFlag("inspect.journal", inspectCmd.Flags().Lookup("journal"))

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), logger, args[0], viper.GetString("inspect.journal"))
	if err != nil {
		return err
	}
	defer s.Close()

	out := describe(s.host)
	if s.journal != nil {
		for i := range out {
			if out[i].History, err = s.journal.History(out[i].Name); err != nil {
				return err
			}
		}
	}
	if viper.GetBool("inspect.json") {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	return writeTable(cmd.OutOrStdout(), out)
}

func describe(host *lifecycle.Host) []targetOutput {
	var out []targetOutput
	for _, t := range host.Targets() {
		rec, _ := host.Record(t)
		o := targetOutput{
			Name:        t.Name(),
			ID:          t.ID(),
			Phase:       rec.Phase,
			Completions: rec.Completions,
			Members:     []memberRow{},
		}
		for _, level := range []member.Level{member.LevelStatic, member.LevelInstance} {
			for _, m := range t.Members(level) {
				o.Members = append(o.Members, memberRow{
					Name:        m.Name,
					Level:       level.String(),
					Wrapped:     m.Wrapped,
					Interceptor: m.Interceptor,
					Original:    m.Original,
				})
			}
		}
		out = append(out, o)
	}
	return out
}

func writeJSON(w io.Writer, out []targetOutput) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errx.Wrap(ErrEncodeOutput, err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func writeTable(w io.Writer, out []targetOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tMEMBER\tLEVEL\tWRAPPED\tINTERCEPTOR\tORIGINAL")
	for _, o := range out {
		for _, r := range o.Members {
			interceptor := "-"
			if r.Interceptor != "" {
				interceptor = r.Interceptor
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n", o.Name, r.Name, r.Level, r.Wrapped, interceptor, r.Original)
		}
	}
	return tw.Flush()
}
