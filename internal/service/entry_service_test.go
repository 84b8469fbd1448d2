package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"logbook/backend/internal/model"
	"logbook/backend/internal/repository/mock"
	"logbook/backend/internal/service"
)

func TestEntryService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	expected := []model.Entry{
		{ID: "2", Date: "2024-01-02T10:00:00Z", Content: "newer"},
		{ID: "1", Date: "2024-01-01T10:00:00Z", Content: "older"},
	}
	mockEntries.EXPECT().Snapshot(ctx).Return(expected)

	entries := svc.List(ctx)
	require.Equal(t, expected, entries)
}

func TestEntryService_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	mockEntries.EXPECT().Snapshot(ctx).Return([]model.Entry{
		{ID: "1", Content: "found"},
	})

	entry, err := svc.GetByID(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "found", entry.Content)
}

func TestEntryService_GetByID_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	mockEntries.EXPECT().Snapshot(ctx).Return(nil)

	_, err := svc.GetByID(ctx, "missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestEntryService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	draft := model.EntryDraft{Content: "note"}
	mockEntries.EXPECT().Add(ctx, draft).Return(model.Entry{ID: "1", Content: "note"}, true)

	entry, err := svc.Create(ctx, draft)
	require.NoError(t, err)
	require.Equal(t, "1", entry.ID)
}

func TestEntryService_Create_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	draft := model.EntryDraft{}
	mockEntries.EXPECT().Add(ctx, draft).Return(model.Entry{}, false)

	_, err := svc.Create(ctx, draft)
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestEntryService_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	source := model.Entry{
		ID: "1", Date: "2024-01-01T10:00:00Z",
		Content: "copy me", TicketNumber: "123456", ImageURL: "/img.jpg",
	}
	mockEntries.EXPECT().Snapshot(ctx).Return([]model.Entry{source})
	mockEntries.EXPECT().
		Add(ctx, model.EntryDraft{Content: "copy me", TicketNumber: "123456", ImageURL: "/img.jpg"}).
		Return(model.Entry{ID: "2", Content: "copy me"}, true)

	copied, err := svc.Duplicate(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "2", copied.ID)
}

func TestEntryService_Duplicate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	mockEntries.EXPECT().Snapshot(ctx).Return(nil)

	_, err := svc.Duplicate(ctx, "missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestEntryService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEntries := mock.NewMockEntryRepository(ctrl)
	svc := service.NewEntryService(mockEntries)
	ctx := context.Background()

	mockEntries.EXPECT().Snapshot(ctx).Return([]model.Entry{
		{ID: "1", Date: "2024-01-01T10:00:00Z", Content: "note"},
	})

	payload, err := svc.Export(ctx)
	require.NoError(t, err)

	var decoded []model.Entry
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Len(t, decoded, 1)
	require.Equal(t, "note", decoded[0].Content)
	require.Contains(t, string(payload), "\n  ", "export is indented")
}
