package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netsketch/internal/domain"
	"netsketch/internal/repository/sqlite"
)

func newSnapshotService(t *testing.T) (*EditorService, chan Event) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return newTestService(t, WithRepository(repo))
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, events := newSnapshotService(t)
	addPair(t, svc)
	want := svc.Topology()
	drain(events)

	info, err := svc.SaveSnapshot(ctx, "lab", "two hosts")
	require.NoError(t, err)
	assert.Equal(t, 2, info.DeviceCount)
	assert.Equal(t, 1, info.LinkCount)
	assert.NotEmpty(t, info.Checksum)
	assert.Equal(t, []EventType{EventSnapshotsChanged}, drain(events))

	svc.AddDevice(AddDeviceRequest{Type: domain.DeviceTypeRouter})

	_, err = svc.LoadSnapshot(ctx, "lab")
	require.NoError(t, err)
	got := svc.Topology()
	assert.Equal(t, want.Devices, got.Devices)
	assert.Equal(t, want.Links, got.Links)
	assert.False(t, got.CanUndo)

	snap, err := svc.GetSnapshot(ctx, "lab")
	require.NoError(t, err)
	assert.Equal(t, "two hosts", snap.Description)
	assert.NotEmpty(t, snap.Data)
}

func TestSnapshotList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSnapshotService(t)

	_, err := svc.SaveSnapshot(ctx, "a", "")
	require.NoError(t, err)
	_, err = svc.SaveSnapshot(ctx, "b", "")
	require.NoError(t, err)

	list, err := svc.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeleteSnapshot(ctx, "a"))
	list, err = svc.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Name)
}

func TestSnapshotErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSnapshotService(t)

	_, err := svc.SaveSnapshot(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.LoadSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	assert.ErrorIs(t, svc.DeleteSnapshot(ctx, "missing"), ErrSnapshotNotFound)

	bare, _ := newTestService(t)
	_, err = bare.ListSnapshots(ctx)
	assert.ErrorIs(t, err, ErrNoRepository)
	_, err = bare.SaveSnapshot(ctx, "x", "")
	assert.ErrorIs(t, err, ErrNoRepository)
}
