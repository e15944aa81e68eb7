package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spacegate/internal/routes"
	"spacegate/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	exitInsufficient = 1
	exitFailure      = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI and maps the outcome to a process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logrus.SetOutput(stderr)

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, services.ErrInsufficientSpace):
		return exitInsufficient
	default:
		logrus.Error(err)
		return exitFailure
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "spacegate",
		Short:         "Exit non-zero when free disk space is below the required threshold",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := services.LoadConfig(cmd.Flags(), configFile)
			if err != nil {
				return err
			}
			return services.NewChecker(cfg.Path, cfg.RequiredGB).Run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	pFlags := root.PersistentFlags()
	pFlags.String("path", "", "filesystem path to check (default: C:\\ on Windows, / elsewhere)")
	pFlags.String("required", "", "required free space in GB, overrides "+services.EnvRequiredSpace)
	pFlags.StringVarP(&configFile, "config", "c", "", "optional config file (toml, yaml or json)")
	pFlags.BoolVarP(&verbose, "verbose", "v", false, "log disk usage details to stderr")

	root.AddCommand(newServeCmd(&configFile), newTokenCmd(&configFile))
	return root
}

func newServeCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer space checks over HTTP on GET /space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := services.LoadConfig(cmd.Flags(), *configFile)
			if err != nil {
				return err
			}

			var auth *services.AuthService
			if cfg.JWTSecret != "" {
				if auth, err = services.NewAuthService(cfg.JWTSecret, cfg.TokenExpiry); err != nil {
					return err
				}
			} else {
				logrus.Warnf("[PROBE] %s not set, probe is unauthenticated", services.EnvProbeJWTSecret)
			}

			srv := &http.Server{
				Addr:              cfg.Bind,
				Handler:           routes.NewRouter(cfg, auth, nil),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logrus.Infof("[PROBE] Listening on %s, checking %s for %dGB", cfg.Bind, cfg.Path, cfg.RequiredGB)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("bind", "", "listen address (default "+services.DefaultProbeBind+")")
	cmd.Flags().Duration("cache-ttl", services.DefaultCacheTTL, "how long a disk usage result is reused")
	return cmd
}

func newTokenCmd(configFile *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the HTTP probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := services.LoadConfig(cmd.Flags(), *configFile)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("%s must be set to issue tokens", services.EnvProbeJWTSecret)
			}

			auth, err := services.NewAuthService(cfg.JWTSecret, cfg.TokenExpiry)
			if err != nil {
				return err
			}
			token, err := auth.GenerateToken(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "pipeline", "client name embedded in the token")
	cmd.Flags().Duration("token-expiry", services.DefaultTokenExpiry, "token lifetime")
	return cmd
}
