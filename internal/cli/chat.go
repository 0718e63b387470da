package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asjidimtiaz/leadqual/internal/config"
	"github.com/asjidimtiaz/leadqual/internal/domain"
	"github.com/asjidimtiaz/leadqual/internal/engine"
	"github.com/asjidimtiaz/leadqual/internal/hooks"
)

// newChatCmd runs a local qualification conversation in the terminal. Useful
// for tuning the rule vocabulary without deploying the widget.
func newChatCmd() *cobra.Command {
	var useMock bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the qualification bot locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if useMock {
				cfg.LLM.Provider = "mock"
			}

			client, err := buildLLMClient(cfg)
			if err != nil {
				return err
			}

			rules, err := engine.LoadRules(cfg.Engine.RulesFile)
			if err != nil {
				return err
			}

			manager := engine.NewManager(
				engine.NewMemorySessionStore(),
				rules,
				engine.NewResponder(client, responderConfig(cfg), log),
				engine.NewGate(printRecorder{cmd.OutOrStdout()}, log),
				hooks.NewManager(log),
				log,
			)

			ctx := cmd.Context()
			sess, err := manager.StartSession(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %s - type a message, or /quit to exit\n", sess.ID)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/exit" {
					return nil
				}

				res, err := manager.ProcessMessage(ctx, sess.ID, line)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n[mode=%s score=%d converted=%t]\n",
					res.Reply, res.Mode, res.LeadScore, res.IsConverted)
			}
		},
	}

	cmd.Flags().BoolVar(&useMock, "mock", false, "use the mock completion provider")
	return cmd
}

// printRecorder prints created leads to the terminal instead of a CRM.
type printRecorder struct {
	out io.Writer
}

func (p printRecorder) Create(_ context.Context, lead domain.Lead) error {
	fmt.Fprintf(p.out, "[lead created: %s <%s> score=%d tier=%s]\n",
		lead.Name, lead.Email, lead.Score, lead.Tier)
	return nil
}
