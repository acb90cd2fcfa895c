//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/supportdesk/internal/testutil"
)

func newTestS3Client(ctx context.Context, t *testing.T) *S3Client {
	t.Helper()
	rc := testutil.NewRustFSContainer(ctx, t)
	t.Cleanup(func() { _ = rc.Terminate(ctx) })

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "manuals",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	return client
}

func TestS3Client_TextRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestS3Client(ctx, t)

	_, found, err := client.GetText(ctx, "missing.md")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.PutText(ctx, "doc.md", "شاشة المبيعات: الرئيسية ← المبيعات"))
	text, found, err := client.GetText(ctx, "doc.md")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "شاشة المبيعات: الرئيسية ← المبيعات", text)

	require.NoError(t, client.EnsureBucket(ctx), "existing bucket is fine")
}

func TestManualSource(t *testing.T) {
	ctx := context.Background()
	manual := NewManualSource(newTestS3Client(ctx, t), "manual.md")

	text, err := manual.GetManual(ctx)
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, manual.SaveManual(ctx, "دليل التشغيل"))
	text, err = manual.GetManual(ctx)
	require.NoError(t, err)
	assert.Equal(t, "دليل التشغيل", text)

	require.NoError(t, manual.DeleteManual(ctx))
	require.NoError(t, manual.DeleteManual(ctx), "deleting twice is not an error")
	text, err = manual.GetManual(ctx)
	require.NoError(t, err)
	assert.Empty(t, text)
}
