//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type respondResult struct {
	Reply     string `json:"reply"`
	Emotion   string `json:"emotion"`
	Intent    string `json:"intent"`
	Source    string `json:"source"`
	Unmatched bool   `json:"unmatched"`
	Degraded  bool   `json:"degraded"`
}

type listResult struct {
	Items []map[string]interface{} `json:"items"`
}

func respond(t *testing.T, env *E2ETestEnv, message string) respondResult {
	t.Helper()
	resp, err := env.Post("/chat/respond", map[string]interface{}{"message": message}, "")
	require.NoError(t, err)

	var out respondResult
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

func TestE2E_SupportDesk(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("health", func(t *testing.T) {
		resp, err := env.HTTPClient.Get(env.ServerURL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("knowledge base answer for a rushed question", func(t *testing.T) {
		out := respond(t, env, "فاتورة المبيعات منين؟")
		assert.Equal(t, "kb", out.Source)
		assert.Equal(t, "rushed", out.Emotion)
		assert.False(t, out.Unmatched)
		assert.False(t, out.Degraded)
	})

	t.Run("unknown question points at the nearest menu", func(t *testing.T) {
		// Every core manual section has a menu path title, so the docs
		// source answers before the fallback does.
		out := respond(t, env, "الزرافة بتاكل برتقال")
		assert.Equal(t, "docs", out.Source)
		assert.False(t, out.Unmatched)
		assert.Contains(t, out.Reply, "قائمة [")
	})

	t.Run("emotion endpoint", func(t *testing.T) {
		resp, err := env.Post("/chat/emotion", map[string]string{"text": "البرنامج بايظ!!!"}, "")
		require.NoError(t, err)
		var out struct {
			Emotion string `json:"emotion"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &out))
		assert.Equal(t, "angry", out.Emotion)
	})

	t.Run("ended sessions feed the candidate list", func(t *testing.T) {
		question := "عايز اعمل جرد للمخزن"
		for i := 0; i < 3; i++ {
			resp, err := env.Post("/sessions/end", map[string]interface{}{
				"session_id": uuid.NewString(),
				"started_at": time.Now().Add(-time.Minute).UTC(),
				"messages": []map[string]interface{}{
					{"role": "user", "text": "أنا أحمد"},
					{"role": "model", "text": "أهلاً يا أحمد"},
					{"role": "user", "text": question, "unmatched": true},
					{"role": "model", "text": "ماشي! ممكن توضح أكتر؟"},
				},
			}, "")
			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, resp.Status)
		}

		resp, err := env.Get("/admin/logs?limit=10", adminKey)
		require.NoError(t, err)
		var logs listResult
		require.NoError(t, json.Unmarshal(resp.Data, &logs))
		require.Len(t, logs.Items, 3)
		assert.Equal(t, question, logs.Items[0]["unmatched_question"])
		assert.Equal(t, "أحمد", logs.Items[0]["client_name"])

		_, err = env.Post("/admin/expand", nil, adminKey)
		require.NoError(t, err)

		resp, err = env.Get("/admin/candidates", adminKey)
		require.NoError(t, err)
		var candidates listResult
		require.NoError(t, json.Unmarshal(resp.Data, &candidates))
		require.NotEmpty(t, candidates.Items)
		assert.Equal(t, question, candidates.Items[0]["question"])
		assert.Equal(t, "inventory", candidates.Items[0]["category"])
	})

	t.Run("snippets are searched before the knowledge base", func(t *testing.T) {
		resp, err := env.Post("/admin/snippets", map[string]string{
			"content": "الباركود مش بيطبع؟ غير مقاس الباركود من قائمة الاصناف",
		}, adminKey)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Status)

		var snippet struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &snippet))

		out := respond(t, env, "الباركود مش بيطبع")
		assert.Equal(t, "snippets", out.Source)
		assert.Contains(t, out.Reply, "غير مقاس الباركود")

		resp, err = env.Delete("/admin/snippets/"+snippet.ID, adminKey)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Status)

		out = respond(t, env, "الباركود مش بيطبع")
		assert.NotEqual(t, "snippets", out.Source)
	})

	t.Run("knowledge items can be saved and deleted", func(t *testing.T) {
		resp, err := env.Put("/admin/knowledge", map[string]interface{}{
			"id":        "kb_e2e_shift",
			"category":  "general",
			"questions": []string{"ازاي اطبع كشف حساب المورد الزرافة"},
			"answer":    "من قائمة الموردين اختار كشف حساب واضغط طباعة",
		}, adminKey)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)

		out := respond(t, env, "ازاي اطبع كشف حساب المورد الزرافة")
		assert.Equal(t, "kb", out.Source)
		assert.Contains(t, out.Reply, "كشف حساب")

		resp, err = env.Delete("/admin/knowledge/kb_e2e_shift", adminKey)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Status)

		resp, err = env.Delete("/admin/knowledge/kb_e2e_shift", adminKey)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("manual upload is searched as docs", func(t *testing.T) {
		manual := "### الزرافة\nقائمة [الادوات] ← الزرافة الذكية\n- اضغط تشغيل الزرافة"
		resp, err := env.Put("/admin/manual", map[string]string{"content": manual}, adminKey)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Status)

		stored, found, err := env.S3Client.GetText(env.Ctx, manualKey)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, manual, stored)

		out := respond(t, env, "الزرافة الذكية")
		assert.Equal(t, "docs", out.Source)
		assert.Contains(t, out.Reply, "قائمة [الادوات]")

		resp, err = env.Delete("/admin/manual", adminKey)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Status)

		out = respond(t, env, "الزرافة الذكية")
		assert.NotContains(t, out.Reply, "قائمة [الادوات]")
	})

	t.Run("landing config round trip", func(t *testing.T) {
		landing := map[string]string{
			"contactPhone":   "01099999999",
			"contactEmail":   "help@example.com",
			"contactAddress": "القاهرة",
			"whatsappNumber": "01099999999",
		}
		_, err := env.Put("/admin/landing", landing, adminKey)
		require.NoError(t, err)

		resp, err := env.Get("/admin/landing", adminKey)
		require.NoError(t, err)
		var got map[string]string
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, landing, got)
	})

	t.Run("admin routes require the key", func(t *testing.T) {
		resp, err := env.Get("/admin/snippets", "")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)

		resp, err = env.Get("/admin/snippets", "wrong-key")
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})
}

func TestE2E_SupportCLI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.BuildBinaries()

	out, err := env.RunSupport("", "ask", "فاتورة", "المبيعات", "منين؟")
	require.NoError(t, err, out)
	assert.Contains(t, out, "source=kb")

	out, err = env.RunSupport("", "emotion", "البرنامج", "بايظ")
	require.NoError(t, err, out)
	assert.Contains(t, out, "angry")

	out, err = env.RunSupport("", "candidates", "--limit", "5")
	require.NoError(t, err, out)
}
