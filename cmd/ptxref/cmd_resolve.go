package main

import (
	"fmt"

	"ptxref/internal/resolve"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveCmd runs both phases and rewrites the corpus in place
var resolveCmd = &cobra.Command{
	Use:   "resolve [root]",
	Short: "Rewrite short references to their qualified identifiers",
	Long: `Builds the resolution table from every document under root, then
rewrites each <xref ref="..."> whose identifier has a declaration.

References with no declaration are left unchanged. If a document cannot be
rewritten the others still are, and the command exits non-zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	r, err := resolve.New(cfg, resolve.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("Resolving references",
		zap.String("root", cfg.Root),
		zap.Int("workers", cfg.Workers),
		zap.Bool("strict", cfg.Strict))

	report, runErr := r.Run(ctx)
	if report != nil {
		printReport(cmd, report)
	}
	if runErr != nil {
		return fmt.Errorf("resolve %s: %w", cfg.Root, runErr)
	}
	return nil
}

func printReport(cmd *cobra.Command, report *resolve.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Root:       %s\n", report.Root)
	fmt.Fprintf(out, "Documents:  %d\n", report.Documents)
	fmt.Fprintf(out, "Entries:    %d\n", report.Entries)
	fmt.Fprintf(out, "References: %d (%d rewritten)\n", report.References, report.Rewritten)

	if len(report.Unresolved) > 0 {
		fmt.Fprintf(out, "Unresolved: %d\n", len(report.Unresolved))
		for _, id := range report.Unresolved {
			fmt.Fprintf(out, "  %s\n", id)
		}
	}
	for _, c := range report.Conflicts {
		fmt.Fprintf(out, "Ambiguous:  %s -> %s (%d candidates)\n", c.Short, c.Winner, len(c.Candidates))
	}
	for _, id := range report.Unstable {
		fmt.Fprintf(out, "Unstable:   %s\n", id)
	}
	if report.Skipped > 0 {
		fmt.Fprintf(out, "Skipped:    %d malformed reference tags\n", report.Skipped)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(out, "Failed:     %s: %v\n", f.Path, f.Err)
	}
}
