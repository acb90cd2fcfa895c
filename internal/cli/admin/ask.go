package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/supportdesk/internal/service"
)

// AskCmd answers one message in-process, without a running server. It reads
// the configured database, or the embedded corpus when none is set.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a message locally",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

type localReply struct {
	Reply     string `json:"reply"`
	Emotion   string `json:"emotion"`
	Intent    string `json:"intent,omitempty"`
	Category  string `json:"category,omitempty"`
	Source    string `json:"source"`
	Unmatched bool   `json:"unmatched"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	be, err := openBackend(ctx, cfg, log, backendOptions{})
	if err != nil {
		return err
	}
	defer be.close()

	responder := service.NewResponder(be.store, service.ResponderConfig{
		Persona: personaFromConfig(cfg),
		Logger:  log,
	})
	reply, err := responder.Respond(ctx, strings.Join(args, " "), nil)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	out := localReply{
		Reply:     reply.Text,
		Emotion:   string(reply.Emotion),
		Source:    string(reply.Source),
		Unmatched: reply.Unmatched,
	}
	if reply.Intent != nil {
		out.Intent = string(reply.Intent.Intent.Name)
		out.Category = string(reply.Intent.Intent.Category)
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	}

	fmt.Fprintln(w, out.Reply)
	fmt.Fprintf(w, "\nemotion=%s source=%s", out.Emotion, out.Source)
	if out.Intent != "" {
		fmt.Fprintf(w, " intent=%s", out.Intent)
	}
	fmt.Fprintln(w)
	return nil
}

// ExpandCmd runs the log miner once.
func ExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand",
		Short: "Mine the recent chat logs for candidate questions once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			be, err := openBackend(ctx, cfg, log, backendOptions{requireDatabase: true})
			if err != nil {
				return err
			}
			defer be.close()

			miner := service.NewLogMiner(be.store, service.LogMinerConfig{
				Window:         cfg.FeederWindow,
				MinOccurrences: cfg.FeederMinOccurrences,
			}, log)
			n, err := miner.Run(ctx)
			if err != nil {
				return fmt.Errorf("failed to mine logs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d candidate questions\n", n)
			return nil
		},
	}
}
