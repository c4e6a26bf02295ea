// Package cli implementa o modo de linha de comando para aplicar eventos de
// ciclo de vida localmente, fora do Lambda (por exemplo contra o LocalStack).
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/spf13/cobra"

	"subnet-tagger/internal/domain/subnettag"
	"subnet-tagger/internal/ports"
	"subnet-tagger/pkg/config"
	"subnet-tagger/pkg/handler"
)

// UseCaseFactory constrói o use case a partir da configuração AWS
type UseCaseFactory func(ctx context.Context, cfg config.AWSConfig) (ports.SubnetTagUseCase, error)

// CLI representa a interface de linha de comando
type CLI struct {
	cfg        *config.Config
	newUseCase UseCaseFactory

	file        string
	requestType string
}

// NewCLI cria uma nova instância do CLI
func NewCLI(cfg *config.Config, newUseCase UseCaseFactory) *CLI {
	return &CLI{cfg: cfg, newUseCase: newUseCase}
}

// Commands retorna os subcomandos apply, plan e delete
func (c *CLI) Commands() []*cobra.Command {
	return []*cobra.Command{c.applyCommand(), c.planCommand(), c.deleteCommand()}
}

// BindAWSFlags registra as flags AWS que sobrescrevem as variáveis de ambiente
func (c *CLI) BindAWSFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&c.cfg.AWS.Region, "region", c.cfg.AWS.Region, "AWS region (env AWS_REGION)")
	flags.StringVar(&c.cfg.AWS.Endpoint, "endpoint", c.cfg.AWS.Endpoint, "EC2 endpoint URL, e.g. LocalStack (env AWS_ENDPOINT_URL)")
	flags.StringVar(&c.cfg.AWS.Profile, "profile", c.cfg.AWS.Profile, "shared config profile (env AWS_PROFILE)")
}

func (c *CLI) addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.file, "file", "f", "", "event file in YAML or JSON, - for stdin")
	_ = cmd.MarkFlagRequired("file")
}

func (c *CLI) applyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply -f <event.yaml>",
		Short: "Handle a lifecycle event locally",
		Long: "Runs the event through the same handler as the Lambda function.\n" +
			"The request type is read from the file unless --request-type is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, c.requestType)
		},
	}
	c.addFileFlag(cmd)
	cmd.Flags().StringVar(&c.requestType, "request-type", "", "override RequestType (Create, Update or Delete)")
	return cmd
}

func (c *CLI) deleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete -f <event.yaml>",
		Short: "Remove the cluster tag from the declared subnets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, string(cfn.RequestDelete))
		},
	}
	c.addFileFlag(cmd)
	return cmd
}

func (c *CLI) planCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan -f <event.yaml>",
		Short: "Show which subnets an update would tag or untag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			h, event, err := c.load(ctx, cmd.InOrStdin())
			if err != nil {
				return err
			}

			plan, err := h.Plan(ctx, event)
			if err != nil {
				return err
			}
			PrintPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	c.addFileFlag(cmd)
	return cmd
}

// run carrega o evento, aplica o override de RequestType e chama o handler
func (c *CLI) run(cmd *cobra.Command, requestType string) error {
	ctx := cmd.Context()
	h, event, err := c.load(ctx, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if requestType != "" {
		event.RequestType = cfn.RequestType(requestType)
	}

	resp, err := h.Handle(ctx, event)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", event.RequestType, resp.Message)
	return nil
}

func (c *CLI) load(ctx context.Context, stdin io.Reader) (*handler.Handler, cfn.Event, error) {
	f, err := ParseFile(c.file, stdin)
	if err != nil {
		return nil, cfn.Event{}, err
	}

	uc, err := c.newUseCase(ctx, c.cfg.AWS)
	if err != nil {
		return nil, cfn.Event{}, fmt.Errorf("failed to create use case: %w", err)
	}
	return handler.New(uc), f.ToEvent(), nil
}

// PrintPlan imprime o plano em formato legível
func PrintPlan(w io.Writer, plan *subnettag.Plan) {
	fmt.Fprintf(w, "\n=== Plan for tag %s ===\n\n", plan.ClusterTag)
	for _, id := range plan.ToAdd {
		fmt.Fprintf(w, "  + %s\n", id)
	}
	for _, id := range plan.ToRemove {
		fmt.Fprintf(w, "  - %s\n", id)
	}
	for _, id := range plan.Unchanged {
		fmt.Fprintf(w, "    %s\n", id)
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintln(w, plan.String())
}
