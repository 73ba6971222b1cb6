package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nati-dev/nati-console/internal/grpc/client"
	"github.com/nati-dev/nati-console/internal/grpc/server"
)

type healthResult struct {
	Address string `json:"address"`
	Service string `json:"service"`
	Status  string `json:"status"`
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	var (
		addr    string
		service string
		timeout time.Duration
		tlsCfg  client.TLSConfig
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a console's gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(addr, &tlsCfg)
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			status, err := c.Check(ctx, service)
			if err != nil {
				return err
			}

			res := healthResult{Address: addr, Service: service, Status: status.String()}
			err = opts.printer(cmd.OutOrStdout()).print(res, func(tw *tabwriter.Writer) {
				text := red(res.Status)
				if status == healthpb.HealthCheckResponse_SERVING {
					text = green(res.Status)
				}
				fmt.Fprintf(tw, "%s\t%s\n", addr, text)
			})
			if err != nil {
				return err
			}
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("%s is %s", addr, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "Console gRPC address")
	cmd.Flags().StringVar(&service, "service", server.ServiceName, `Service name to check ("" for the whole server)`)
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Check timeout")
	cmd.Flags().BoolVar(&tlsCfg.Enabled, "tls", false, "Use TLS")
	cmd.Flags().StringVar(&tlsCfg.CertFile, "tls-cert", "", "Client certificate file")
	cmd.Flags().StringVar(&tlsCfg.KeyFile, "tls-key", "", "Client key file")
	cmd.Flags().StringVar(&tlsCfg.CAFile, "tls-ca", "", "CA certificate file")
	cmd.Flags().StringVar(&tlsCfg.ServerNameOverride, "tls-server-name", "", "Override the TLS server name")
	return cmd
}
