package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/legajos-penal/internal/app"
	"github.com/turtacn/legajos-penal/internal/application/upload"
	"github.com/turtacn/legajos-penal/internal/infrastructure/pdf"
)

type dedupeOutput struct {
	Seed uint64 `json:"seed"`
	*upload.DryRunReport
}

// NewDedupeCmd runs the upload dedup over a local directory without storing
// anything, printing the clusters and the file each one would keep.
func NewDedupeCmd() *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "dedupe <dir>",
		Short: "Show how a batch of PDFs would be deduplicated",
		Long: `Fingerprint every PDF in <dir>, group them by case number and similarity,
and print the resulting clusters as JSON. Nothing is written. Pass the seed
printed by a previous run (or by the server log) to reproduce its tie-breaks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config.Upload
			if cmd.Flags().Changed("seed") {
				cfg.TieBreakSeed = seed
			}

			svc, used := app.NewUploadService(cfg, pdf.NewReader(cliCtx.Logger), nil, nil, cliCtx.Logger)
			report, err := svc.Dedupe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, dedupeOutput{Seed: used, DryRunReport: report})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "tie-break seed (default: upload.tie_break_seed, or random when 0)")
	return cmd
}
