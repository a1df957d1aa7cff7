//go:build unit

package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accessentitlement/platform/internal/broker"
	"github.com/accessentitlement/platform/internal/validation/clients"
)

func TestConsumerLoopApprovesAndAcks(t *testing.T) {
	backends := newFakeBackends()
	backends.activeGroups[100] = []clients.ActiveGroup{{ID: 9}}
	engine := newTestEngine(t, backends)

	jobs := broker.NewFakeJobQueue()
	results := broker.NewFakeResultQueue()
	require.NoError(t, jobs.PublishJob(context.Background(), broker.ValidationJob{
		RequestID: "r1", UserID: 100, Kind: broker.KindGroup, ItemID: 1,
	}))

	require.NoError(t, RunConsumerLoop(context.Background(), jobs, results, engine))

	assert.Equal(t, 1, jobs.Channel().AckedCount())
	assert.Equal(t, 0, jobs.Channel().NackedCount())
	assert.Len(t, results.Channel().Drain(), 1)
}

func TestConsumerLoopNacksMalformedJob(t *testing.T) {
	backends := newFakeBackends()
	engine := newTestEngine(t, backends)

	jobs := broker.NewFakeJobQueue()
	results := broker.NewFakeResultQueue()
	jobs.Channel().Requeue([]byte(`not-json`))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, RunConsumerLoop(ctx, jobs, results, engine))

	assert.Equal(t, 1, jobs.Channel().NackedCount())
	assert.Equal(t, 0, jobs.Channel().AckedCount())
}
