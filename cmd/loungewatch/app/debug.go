package app

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/loungewatch/loungewatch/internal/api"
)

func newDebugCmd(opts *rootOptions) *cobra.Command {
	var certs bool
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Fetch every source now and print per-source diagnostics as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			c, err := build(cfg)
			if err != nil {
				return err
			}
			var certFn api.CertFunc
			if certs {
				certFn = c.certFunc()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(api.BuildDebug(cmd.Context(), c.svc, c.metrics, certFn))
		},
	}
	cmd.Flags().BoolVar(&certs, "certs", false, "also inspect each HTTPS endpoint's certificate")
	return cmd
}
