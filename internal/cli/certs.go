package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nati-dev/nati-console/internal/cert"
)

func newCertsCommand() *cobra.Command {
	var (
		dir   string
		hosts []string
	)

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Create TLS material for the console's gRPC endpoint",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "certs", "Directory holding ca.crt and ca.key")

	server := &cobra.Command{
		Use:   "server",
		Short: "Create the CA and server certificate if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := cert.Paths{
				CACert: filepath.Join(dir, "ca.crt"),
				CAKey:  filepath.Join(dir, "ca.key"),
				Cert:   filepath.Join(dir, "server.crt"),
				Key:    filepath.Join(dir, "server.key"),
			}
			if err := cert.EnsureServer(p, hosts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("server certificate:"), p.Cert)
			return nil
		},
	}
	server.Flags().StringSliceVar(&hosts, "host", nil, "DNS name or IP the certificate is valid for (repeatable)")

	client := &cobra.Command{
		Use:   "client <name>",
		Short: "Issue a client certificate for an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			p := cert.Paths{
				CACert: filepath.Join(dir, "ca.crt"),
				CAKey:  filepath.Join(dir, "ca.key"),
				Cert:   filepath.Join(dir, name+".crt"),
				Key:    filepath.Join(dir, name+".key"),
			}
			if err := cert.IssueClient(p, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("client certificate:"), p.Cert)
			return nil
		},
	}

	cmd.AddCommand(server, client)
	return cmd
}
