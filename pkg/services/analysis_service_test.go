package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchit/watchit/pkg/models"
	"github.com/watchit/watchit/pkg/services"
)

func TestAnalysisService_RecordAndListForEvent(t *testing.T) {
	db := newTestDB(t)
	events := services.NewEventService(db)
	analyses := services.NewAnalysisService(db)

	event, err := events.Create(context.Background(), models.IngestRequest{ChildID: "child-1", Kind: "navigation"})
	require.NoError(t, err)

	_, err = analyses.Record(context.Background(), models.Analysis{
		EventID: event.ID,
		Model:   "fast",
		Version: "v1",
		Scores:  map[string]float64{"violence": 0.2},
		Label:   "allow",
	})
	require.NoError(t, err)

	_, err = analyses.Record(context.Background(), models.Analysis{
		EventID: event.ID,
		Model:   "judge",
		Version: "v1",
		Label:   "allow",
	})
	require.NoError(t, err)

	all, err := analyses.ListForEvent(context.Background(), event.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "fast", all[0].Model)
	assert.Equal(t, 0.2, all[0].Scores["violence"])
	assert.Equal(t, "judge", all[1].Model)
}

func TestAnalysisService_RecordRequiresEventID(t *testing.T) {
	db := newTestDB(t)
	analyses := services.NewAnalysisService(db)

	_, err := analyses.Record(context.Background(), models.Analysis{Model: "fast"})
	require.Error(t, err)
}
