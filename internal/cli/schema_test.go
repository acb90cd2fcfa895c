package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	root := &cobra.Command{Use: "support", Short: "client"}
	root.PersistentFlags().String("url", "", "Server URL")
	AnnotateEnv(root.PersistentFlags().Lookup("url"), "SUPPORT_URL")
	AddHelpJSONFlag(root)

	ask := &cobra.Command{Use: "ask <message>", Short: "ask once", RunE: func(*cobra.Command, []string) error { return nil }}
	ask.Flags().IntP("limit", "n", 20, "Maximum number of results")
	hidden := &cobra.Command{Use: "debug", Hidden: true}
	root.AddCommand(ask, hidden)

	schema := GenerateSchema(root)

	assert.Equal(t, "support", schema.Name)
	require.Len(t, schema.Persistent, 1)
	assert.Equal(t, "url", schema.Persistent[0].Name)
	assert.Equal(t, "SUPPORT_URL", schema.Persistent[0].Env)
	assert.Empty(t, schema.Flags)

	require.Len(t, schema.Subcommands, 1, "hidden commands are skipped")
	sub := schema.Subcommands[0]
	assert.Equal(t, "ask", sub.Name)
	require.Len(t, sub.Flags, 1)
	assert.Equal(t, "n", sub.Flags[0].Shorthand)
	assert.Equal(t, "20", sub.Flags[0].Default)
	assert.Empty(t, sub.Flags[0].Env)
}

func TestFindTargetCommand(t *testing.T) {
	root := &cobra.Command{Use: "supportd"}
	migrate := &cobra.Command{Use: "migrate"}
	up := &cobra.Command{Use: "up"}
	migrate.AddCommand(up)
	root.AddCommand(migrate)

	assert.Equal(t, up, findTargetCommand(root, []string{"migrate", "up"}))
	assert.Equal(t, migrate, findTargetCommand(root, []string{"migrate", "--verbose"}))
	assert.Equal(t, root, findTargetCommand(root, nil))
}

func TestAnnotateEnv_NilFlag(t *testing.T) {
	assert.NotPanics(t, func() { AnnotateEnv(nil, "X") })
}
