// Command xlsxsplit splits workbooks from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/locvowork/xlsxsplit/internal/config"
	"github.com/locvowork/xlsxsplit/internal/logger"
	"github.com/locvowork/xlsxsplit/internal/service"
	"github.com/locvowork/xlsxsplit/pkg/sheetsplit"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type splitFlags struct {
	sheets    []string
	keys      []string
	prefix    string
	suffix    string
	mode      string
	outDir    string
	profile   string
	profiles  string
	workers   int
	collision string
}

func newRootCmd() *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:           "xlsxsplit",
		Short:         "Split spreadsheet sheets into groups by key columns",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitLogging("", level)
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(newSplitCmd(), newInspectCmd())
	return root
}

func newSplitCmd() *cobra.Command {
	f := &splitFlags{}
	cmd := &cobra.Command{
		Use:   "split [input.xlsx]",
		Short: "Split a workbook into a workbook or zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(commandContext(cmd), cmd.OutOrStdout(), args[0], f)
		},
	}

	cmd.Flags().StringArrayVarP(&f.sheets, "sheet", "s", nil, "Sheet to split, repeatable")
	cmd.Flags().StringArrayVarP(&f.keys, "key", "k", nil, "Key column, repeatable")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Name prefix")
	cmd.Flags().StringVar(&f.suffix, "suffix", "", "Name suffix")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Split mode: single, union, per-sheet (default single)")
	cmd.Flags().StringVarP(&f.outDir, "output", "o", ".", "Output directory")
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "Named profile from the profiles file")
	cmd.Flags().StringVar(&f.profiles, "profiles", "", "YAML file with presentation and profiles")
	cmd.Flags().IntVar(&f.workers, "workers", sheetsplit.DefaultWorkers, "Parallel archive builders")
	cmd.Flags().StringVar(&f.collision, "collision", string(sheetsplit.CollisionSuffix), "Name collision policy: suffix, error")
	return cmd
}

func runSplit(ctx context.Context, out io.Writer, input string, f *splitFlags) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	svc, err := newService(f.profiles,
		sheetsplit.WithWorkers(f.workers),
		sheetsplit.WithCollisionPolicy(sheetsplit.CollisionPolicy(f.collision)),
	)
	if err != nil {
		return err
	}

	req := sheetsplit.Request{
		Sheets:     f.sheets,
		KeyColumns: f.keys,
		Prefix:     f.prefix,
		Suffix:     f.suffix,
		Mode:       sheetsplit.Mode(f.mode),
	}
	if req.Mode == "" && f.profile == "" {
		req.Mode = sheetsplit.ModeSingleWorkbook
	}

	art, err := svc.Split(ctx, service.SplitInput{
		FileName: filepath.Base(input),
		Data:     data,
		Request:  req,
		Profile:  f.profile,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.outDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(f.outDir, art.FileName)
	if err := os.WriteFile(path, art.Data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	for _, e := range art.Entries {
		fmt.Fprintf(out, "%s\t%d rows\n", e.Name, e.Rows)
	}
	fmt.Fprintf(out, "wrote %s (%d entries)\n", path, len(art.Entries))
	return nil
}

func newInspectCmd() *cobra.Command {
	var sheets, keys []string
	var profiles string
	cmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "Show sheets, shared columns and output counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			svc, err := newService(profiles)
			if err != nil {
				return err
			}
			info, err := svc.Inspect(commandContext(cmd), data, sheets, keys)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	cmd.Flags().StringArrayVarP(&sheets, "sheet", "s", nil, "Sheet to consider, repeatable")
	cmd.Flags().StringArrayVarP(&keys, "key", "k", nil, "Key column for output estimates, repeatable")
	cmd.Flags().StringVar(&profiles, "profiles", "", "YAML file with presentation and profiles")
	return cmd
}

// commandContext carries the process logger so engine logs honour --log-level.
func commandContext(cmd *cobra.Command) context.Context {
	return logger.Global().WithContext(cmd.Context())
}

func newService(profiles string, opts ...sheetsplit.Option) (*service.SplitService, error) {
	var sf *config.SplitFile
	if profiles != "" {
		loaded, err := config.LoadSplitFile(profiles)
		if err != nil {
			return nil, err
		}
		sf = loaded
	}
	return service.NewSplitService(nil, sf, opts...), nil
}
