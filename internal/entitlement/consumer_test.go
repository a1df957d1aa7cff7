//go:build unit

package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accessentitlement/platform/internal/broker"
)

func TestResultConsumerLoopAppliesApprovedResult(t *testing.T) {
	svc, repo, _, _ := newTestService()
	requestID, err := svc.CreateRequest(context.Background(), 100, KindGroup, 1, nil)
	require.NoError(t, err)

	queue := broker.NewFakeResultQueue()
	require.NoError(t, queue.PublishResult(context.Background(), broker.ValidationResult{
		RequestID: requestID, Approved: true, UserID: 100, Kind: broker.KindGroup, ItemID: 1,
	}))

	require.NoError(t, RunResultConsumerLoop(context.Background(), queue, svc))

	row, err := repo.FindByRequestID(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, row.Status)
	assert.Equal(t, 1, queue.Channel().AckedCount())
}

func TestResultConsumerLoopAcksStaleRequestID(t *testing.T) {
	svc, _, _, _ := newTestService()
	queue := broker.NewFakeResultQueue()
	require.NoError(t, queue.PublishResult(context.Background(), broker.ValidationResult{RequestID: "ghost"}))

	require.NoError(t, RunResultConsumerLoop(context.Background(), queue, svc))
	assert.Equal(t, 1, queue.Channel().AckedCount())
	assert.Equal(t, 0, queue.Channel().NackedCount())
}

func TestResultConsumerLoopNacksMalformedBody(t *testing.T) {
	svc, _, _, _ := newTestService()
	queue := broker.NewFakeResultQueue()
	queue.Channel().Requeue([]byte(`not-json`))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, RunResultConsumerLoop(ctx, queue, svc))
	assert.Equal(t, 1, queue.Channel().NackedCount())
}
