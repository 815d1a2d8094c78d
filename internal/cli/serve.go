package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gramframe/internal/api"
)

const defaultAddr = "127.0.0.1:7357"

// serveCommand runs the loopback automation API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cf        configFlags
		addr      string
		instances string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose frames on a loopback HTTP API",
		Long: `Serve starts an HTTP API for test automation. Only loopback
addresses are accepted.

  gramframe serve --instances left,right
  curl -s localhost:7357/instances/left/state`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkLoopback(addr); err != nil {
				return err
			}
			cfg, err := cf.load(cmd)
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			srv := api.NewServer(cfg, logger)
			defer srv.Close()
			if instances == "" {
				printWarning("No instances yet; create them with POST /instances")
			} else {
				for _, id := range strings.Split(instances, ",") {
					if _, err := srv.Create(strings.TrimSpace(id)); err != nil {
						return err
					}
				}
				printKeyValue("Instances", instances)
			}
			printKeyValue("Mode", string(cfg.Display.Mode))
			return listen(cmd.Context(), addr, srv.Handler())
		},
	}

	cf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address (loopback only)")
	cmd.Flags().StringVar(&instances, "instances", "", "instances to create at startup (comma-separated)")

	return cmd
}

// checkLoopback rejects listen addresses reachable from other hosts.
func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("refusing to listen on %q: only loopback addresses are allowed", addr)
	}
	return nil
}

func listen(ctx context.Context, addr string, h http.Handler) error {
	logger := loggerFromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	printInfo("Listening on http://%s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
