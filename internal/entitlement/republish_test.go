//go:build unit

package entitlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanOncePublishesUnpublishedPendingRows(t *testing.T) {
	_, repo, _, pub := newTestService()
	pub.failing = true
	requestID, err := repo.CreateOrReuseRequest(context.Background(), 100, KindGroup, 1, nil, "req-1")
	require.NoError(t, err)
	require.NoError(t, repo.MarkJobPublished(context.Background(), requestID.ID, false))

	pub.failing = false
	r := NewRepublisher(repo, pub, 0)
	r.scanOnce(context.Background())

	row, err := repo.FindByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.True(t, row.JobPublished)
	assert.Len(t, pub.jobs, 1)
}

func TestScanOnceLeavesRowUnpublishedWhenPublishKeepsFailing(t *testing.T) {
	_, repo, _, pub := newTestService()
	requestID, err := repo.CreateOrReuseRequest(context.Background(), 100, KindGroup, 1, nil, "req-1")
	require.NoError(t, err)
	require.NoError(t, repo.MarkJobPublished(context.Background(), requestID.ID, false))
	pub.failing = true

	r := NewRepublisher(repo, pub, 0)
	r.scanOnce(context.Background())

	row, err := repo.FindByRequestID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.False(t, row.JobPublished)
}
