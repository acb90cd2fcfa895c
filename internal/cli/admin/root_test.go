package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/supportdesk/internal/cli"
)

func runSupportd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SUPPORTDESK_DATABASE_URL", "")
	t.Setenv("SUPPORTDESK_LOG_LEVEL", "error")

	root := NewRootCmd("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAskCmd_AnswersFromEmbeddedCorpus(t *testing.T) {
	out, err := runSupportd(t, "ask", "--json", "السلام", "عليكم")
	require.NoError(t, err)

	var reply localReply
	require.NoError(t, json.Unmarshal([]byte(out), &reply))
	assert.Equal(t, "greeting", reply.Source)
	assert.Equal(t, "rushed", reply.Emotion, "two words read as rushed")
	assert.Contains(t, reply.Reply, "أحمد")
	assert.False(t, reply.Unmatched)
}

func TestAskCmd_PlainOutput(t *testing.T) {
	t.Setenv("SUPPORTDESK_BOT_NAME", "سارة")

	out, err := runSupportd(t, "ask", "مرحبا")
	require.NoError(t, err)
	assert.Contains(t, out, "سارة")
	assert.Contains(t, out, "source=greeting")
}

func TestDatabaseCommands_RequireDatabase(t *testing.T) {
	for _, args := range [][]string{{"seed"}, {"expand"}, {"migrate", "up"}} {
		t.Run(args[0], func(t *testing.T) {
			_, err := runSupportd(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "SUPPORTDESK_DATABASE_URL")
		})
	}
}

func TestNewRootCmd_Schema(t *testing.T) {
	schema := cli.GenerateSchema(NewRootCmd("test"))

	var names []string
	for _, sub := range schema.Subcommands {
		names = append(names, sub.Name)
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed", "ask", "expand"}, names)
}
