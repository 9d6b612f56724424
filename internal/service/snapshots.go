package service

import (
	"context"
	"errors"
	"fmt"

	"netsketch/internal/domain"
	"netsketch/internal/logging"
	"netsketch/internal/repository"
)

// SaveSnapshot stores the current topology under name, replacing any
// snapshot with the same name
func (s *EditorService) SaveSnapshot(ctx context.Context, name, description string) (domain.SnapshotInfo, error) {
	if s.repo == nil {
		return domain.SnapshotInfo{}, ErrNoRepository
	}
	if name == "" {
		return domain.SnapshotInfo{}, fmt.Errorf("%w: snapshot name is required", ErrInvalidName)
	}

	s.mu.Lock()
	data, err := s.store.Save()
	devices, links := s.store.DeviceCount(), s.store.LinkCount()
	s.mu.Unlock()
	if err != nil {
		return domain.SnapshotInfo{}, fmt.Errorf("save topology: %w", err)
	}

	snap := &domain.Snapshot{
		SnapshotInfo: domain.SnapshotInfo{
			Name:        name,
			Description: description,
			Version:     domain.CurrentVersion,
			DeviceCount: devices,
			LinkCount:   links,
		},
		Data: data,
	}
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return domain.SnapshotInfo{}, err
	}

	s.bus.Publish(Event{Type: EventSnapshotsChanged, Payload: map[string]string{"saved": name}})
	logging.WithOperation("snapshot").WithField("snapshot", name).
		Infof("saved %d devices, %d links", devices, links)

	return snap.SnapshotInfo, nil
}

// LoadSnapshot replaces the topology with a stored snapshot
func (s *EditorService) LoadSnapshot(ctx context.Context, name string) (domain.SnapshotInfo, error) {
	snap, err := s.getSnapshot(ctx, name)
	if err != nil {
		return domain.SnapshotInfo{}, err
	}
	if err := s.Load(snap.Data, "snapshot:"+name); err != nil {
		return domain.SnapshotInfo{}, err
	}
	return snap.SnapshotInfo, nil
}

// GetSnapshot returns a stored snapshot including its saved text
func (s *EditorService) GetSnapshot(ctx context.Context, name string) (*domain.Snapshot, error) {
	return s.getSnapshot(ctx, name)
}

// ListSnapshots returns snapshot metadata, most recent first
func (s *EditorService) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.ListSnapshots(ctx)
}

// DeleteSnapshot removes a stored snapshot
func (s *EditorService) DeleteSnapshot(ctx context.Context, name string) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	if err := s.repo.DeleteSnapshot(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return err
	}

	s.bus.Publish(Event{Type: EventSnapshotsChanged, Payload: map[string]string{"deleted": name}})
	return nil
}

func (s *EditorService) getSnapshot(ctx context.Context, name string) (*domain.Snapshot, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	snap, err := s.repo.GetSnapshot(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return nil, err
	}
	return snap, nil
}
