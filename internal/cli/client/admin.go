package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Candidate is a recurring unanswered question.
type Candidate struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

// CandidatePage is one page of candidates.
type CandidatePage struct {
	Items      []Candidate `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

// Snippet is an admin correction.
type Snippet struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// CandidatesCmd lists candidate questions mined from the chat logs.
func CandidatesCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "List recurring unanswered questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			q := url.Values{}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if cursor != "" {
				q.Set("cursor", cursor)
			}
			path := "/admin/candidates"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var page CandidatePage
			if err := api.GetInto(cmd.Context(), path, &page); err != nil {
				return fmt.Errorf("failed to list candidates: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out, "No candidate questions.")
				return nil
			}
			for _, c := range page.Items {
				fmt.Fprintf(out, "%4d  %-16s %s\n", c.Count, c.Category, c.Question)
			}
			if page.HasMore && page.NextCursor != "" {
				fmt.Fprintf(out, "\n%s\nMore results available. Use --cursor %s\n", strings.Repeat("-", 40), page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

// SnippetCmd groups the snippet admin commands.
func SnippetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippet",
		Short: "Manage admin snippets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <content>",
		Short: "Add a snippet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			var s Snippet
			if err := api.PostInto(cmd.Context(), "/admin/snippets", map[string]string{"content": strings.Join(args, " ")}, &s); err != nil {
				return fmt.Errorf("failed to add snippet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snippet added: %s\n", s.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snippets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			outputJSON, _ := cmd.Flags().GetBool("output")

			var snippets []Snippet
			if err := api.GetInto(cmd.Context(), "/admin/snippets", &snippets); err != nil {
				return fmt.Errorf("failed to list snippets: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON {
				return printJSON(out, snippets)
			}
			if len(snippets) == 0 {
				fmt.Fprintln(out, "No snippets.")
				return nil
			}
			for _, s := range snippets {
				fmt.Fprintf(out, "%s  %s\n", s.ID, s.Content)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			if _, err := api.Delete(cmd.Context(), "/admin/snippets/"+url.PathEscape(args[0])); err != nil {
				return fmt.Errorf("failed to delete snippet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snippet deleted: %s\n", args[0])
			return nil
		},
	})

	return cmd
}
