package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/slotwise/internal/server"
)

func newServeCmd(st *state) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduler and assistant over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			srv := server.New(server.Config{
				Addr:        st.cfg.Server.Addr,
				CORSOrigins: st.cfg.Server.CORSOrigins,
				Debug:       debug,
			}, server.Services{
				Schedule:  a.Schedule,
				Features:  a.Features,
				Assistant: a.Assistant,
				History:   a.History,
			}, a.Metrics, a.Logger)
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	cmd.Flags().StringSlice("cors-origin", nil, `allowed CORS origin (repeatable, "*" for any)`)
	cmd.Flags().BoolVar(&debug, "debug", false, "run gin in debug mode")
	return cmd
}
