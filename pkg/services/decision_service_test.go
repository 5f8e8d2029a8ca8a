package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/services"
)

func TestDecisionService_CreateSetsOriginalAction(t *testing.T) {
	db := newTestDB(t)
	events := services.NewEventService(db)
	decisions := services.NewDecisionService(db)

	event, err := events.Create(context.Background(), models.IngestRequest{ChildID: "child-1", Kind: "navigation"})
	require.NoError(t, err)

	decision, err := decisions.Create(context.Background(), models.Outcome{
		Action:     models.ActionBlock,
		Reason:     "blocklist_match",
		Categories: []string{"adult"},
	}, event.ID, "v1")
	require.NoError(t, err)
	assert.Equal(t, models.ActionBlock, decision.OriginalAction)
	assert.Equal(t, models.ActionBlock, decision.Action)
}

func TestDecisionService_OverridePreservesOriginalAction(t *testing.T) {
	db := newTestDB(t)
	events := services.NewEventService(db)
	decisions := services.NewDecisionService(db)

	event, err := events.Create(context.Background(), models.IngestRequest{ChildID: "child-1", Kind: "navigation"})
	require.NoError(t, err)
	decision, err := decisions.Create(context.Background(), models.Outcome{Action: models.ActionBlock}, event.ID, "v1")
	require.NoError(t, err)

	require.NoError(t, decisions.Override(context.Background(), decision.ID, models.ActionAllow))

	fetched, err := decisions.Get(context.Background(), decision.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionBlock, fetched.OriginalAction)
	require.NotNil(t, fetched.ManualAction)
	assert.Equal(t, models.ActionAllow, *fetched.ManualAction)
	assert.True(t, fetched.ManualFlagged)
	assert.False(t, fetched.ManualProcessed)
}

func TestDecisionService_ListUnprocessedOverridesExcludesProcessed(t *testing.T) {
	db := newTestDB(t)
	events := services.NewEventService(db)
	decisions := services.NewDecisionService(db)

	var ids []string
	for i := 0; i < 3; i++ {
		event, err := events.Create(context.Background(), models.IngestRequest{ChildID: "child-1", Kind: "navigation"})
		require.NoError(t, err)
		d, err := decisions.Create(context.Background(), models.Outcome{Action: models.ActionBlock}, event.ID, "v1")
		require.NoError(t, err)
		require.NoError(t, decisions.Override(context.Background(), d.ID, models.ActionAllow))
		ids = append(ids, d.ID)
	}

	unprocessed, err := decisions.ListUnprocessedOverrides(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, unprocessed, 3)

	require.NoError(t, decisions.MarkOverridesProcessed(context.Background(), []string{ids[0]}))
	remaining, err := decisions.ListUnprocessedOverrides(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestDecisionService_ListRecentForChild(t *testing.T) {
	db := newTestDB(t)
	events := services.NewEventService(db)
	decisions := services.NewDecisionService(db)

	event, err := events.Create(context.Background(), models.IngestRequest{ChildID: "child-1", Kind: "navigation"})
	require.NoError(t, err)
	_, err = decisions.Create(context.Background(), models.Outcome{Action: models.ActionAllow}, event.ID, "v1")
	require.NoError(t, err)

	recent, err := decisions.ListRecentForChild(context.Background(), "child-1", 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
