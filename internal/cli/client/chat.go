package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Message is one conversation turn as the server expects it.
type Message struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Unmatched bool   `json:"unmatched,omitempty"`
}

// RespondRequest is the body of POST /chat/respond.
type RespondRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history,omitempty"`
}

// RespondResponse is the reply to one user turn.
type RespondResponse struct {
	Reply     string `json:"reply"`
	Emotion   string `json:"emotion"`
	Intent    string `json:"intent,omitempty"`
	Category  string `json:"category,omitempty"`
	Source    string `json:"source"`
	Unmatched bool   `json:"unmatched"`
	Degraded  bool   `json:"degraded"`
}

// EndSessionRequest closes a conversation into a chat log.
type EndSessionRequest struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
	Messages  []Message `json:"messages"`
}

// ChatLog is the stored session as returned by the server.
type ChatLog struct {
	ID                string  `json:"id"`
	DurationSeconds   float64 `json:"duration_seconds"`
	Summary           string  `json:"summary"`
	ClientName        string  `json:"client_name"`
	Emotion           string  `json:"emotion"`
	UnmatchedQuestion *string `json:"unmatched_question"`
}

// AskCmd sends a single message without history.
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the support bot one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			var resp RespondResponse
			if err := api.PostInto(cmd.Context(), "/chat/respond", RespondRequest{Message: strings.Join(args, " ")}, &resp); err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, resp)
			}
			fmt.Fprintln(out, resp.Reply)
			fmt.Fprintf(out, "\n[emotion=%s source=%s", resp.Emotion, resp.Source)
			if resp.Intent != "" {
				fmt.Fprintf(out, " intent=%s", resp.Intent)
			}
			fmt.Fprintln(out, "]")
			return nil
		},
	}
}

// ChatCmd runs an interactive conversation over stdin. The session is saved
// when input ends.
func ChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the support bot interactively",
		Long:  "Reads one message per line until EOF or 'exit', then saves the session on the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			return runChat(cmd, api, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(cmd *cobra.Command, api *APIClient, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()
	started := time.Now().UTC()
	var history []Message

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			break
		}
		if line == "" {
			fmt.Fprint(out, "> ")
			continue
		}

		var resp RespondResponse
		if err := api.PostInto(ctx, "/chat/respond", RespondRequest{Message: line, History: history}, &resp); err != nil {
			return fmt.Errorf("chat failed: %w", err)
		}

		history = append(history,
			Message{Role: "user", Text: line, Unmatched: resp.Unmatched},
			Message{Role: "model", Text: resp.Reply},
		)
		fmt.Fprintf(out, "%s\n\n> ", resp.Reply)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out)

	if len(history) == 0 {
		return nil
	}

	var log ChatLog
	err := api.PostInto(ctx, "/sessions/end", EndSessionRequest{
		SessionID: uuid.NewString(),
		StartedAt: started,
		Messages:  history,
	}, &log)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(out, "Session %s saved (%s, %s)\n", log.ID, log.ClientName, log.Summary)
	return nil
}

// EmotionCmd classifies a text without composing a reply.
func EmotionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emotion <text>",
		Short: "Classify the emotion of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			var resp struct {
				Emotion string `json:"emotion"`
			}
			if err := api.PostInto(cmd.Context(), "/chat/emotion", map[string]string{"text": strings.Join(args, " ")}, &resp); err != nil {
				return fmt.Errorf("emotion failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Emotion)
			return nil
		},
	}
}

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
