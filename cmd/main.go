package main

import (
	"context"
	"errors"
	goflag "flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	awssubnet "subnet-tagger/internal/adapters/aws/subnet"
	"subnet-tagger/internal/ports"
	subnettaguc "subnet-tagger/internal/usecases/subnettag"
	"subnet-tagger/pkg/api"
	"subnet-tagger/pkg/cli"
	"subnet-tagger/pkg/config"
	"subnet-tagger/pkg/handler"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var setupLog = log.Log.WithName("setup")

func main() {
	if err := newRootCommand(config.FromEnv()).Execute(); err != nil {
		setupLog.Error(err, "command failed")
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	opts := zap.Options{
		Development: cfg.LogDevelopment || !config.IsLambda(),
	}

	root := &cobra.Command{
		Use:   "tag-subnets",
		Short: "Keeps a cluster tag on exactly the declared subnets",
		Long: "Without a subcommand the binary runs as the onEvent handler of a\n" +
			"CloudFormation custom resource inside AWS Lambda.",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			log.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context(), cfg)
		},
	}

	fs := goflag.NewFlagSet("zap", goflag.ExitOnError)
	opts.BindFlags(fs)
	root.PersistentFlags().AddGoFlagSet(fs)

	c := cli.NewCLI(cfg, newUseCase)
	c.BindAWSFlags(root)
	root.AddCommand(c.Commands()...)
	root.AddCommand(newServeCommand(cfg))

	return root
}

func newUseCase(ctx context.Context, awsCfg config.AWSConfig) (ports.SubnetTagUseCase, error) {
	sdkCfg, err := awsCfg.GetAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return subnettaguc.NewSubnetTagUseCase(awssubnet.NewRepository(sdkCfg)), nil
}

func runLambda(ctx context.Context, cfg *config.Config) error {
	uc, err := newUseCase(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	setupLog.Info("Starting Lambda handler", "version", version)
	lambda.Start(handler.New(uc).Handle)
	return nil
}

func newServeCommand(cfg *config.Config) *cobra.Command {
	serverCfg := &api.ServerConfig{Version: version}
	var apiKeys []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the event handler over HTTP for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			uc, err := newUseCase(ctx, cfg.AWS)
			if err != nil {
				return err
			}

			serverCfg.Auth = api.AuthConfig{Enabled: len(apiKeys) > 0, APIKeys: apiKeys}
			server := api.NewServer(serverCfg, handler.New(uc))

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				setupLog.Info("Shutting down API server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&serverCfg.Host, "host", "127.0.0.1", "address to bind")
	cmd.Flags().IntVar(&serverCfg.Port, "port", 8080, "port to listen on")
	cmd.Flags().StringSliceVar(&apiKeys, "api-key", nil, "require this API key on /api/v1 (repeatable)")

	return cmd
}
