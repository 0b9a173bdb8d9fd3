package browser

import (
	"context"
	"fmt"
	"sort"

	"clouddrive/models"

	"go.uber.org/zap"
)

// VersionPanelState is the expanded version history of at most one file.
type VersionPanelState struct {
	ActiveFileID *string
	Versions     []models.VersionRecord
	Loading      bool
}

// ToggleVersions expands the version history for a file, or collapses the
// panel when that file is already the expanded one. Switching files while a
// fetch is outstanding discards the stale result when it arrives. A failed
// fetch collapses the panel so it never shows as stuck expanded.
func (s *Session) ToggleVersions(ctx context.Context, fileID string) error {
	s.mu.Lock()
	if s.panel.ActiveFileID != nil && *s.panel.ActiveFileID == fileID {
		s.panelSeq++
		s.panel = VersionPanelState{}
		s.mu.Unlock()
		return nil
	}
	s.panelSeq++
	seq := s.panelSeq
	id := fileID
	s.panel = VersionPanelState{ActiveFileID: &id, Loading: true}
	s.mu.Unlock()

	versions, err := s.drive.ListVersions(ctx, fileID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.panelSeq {
		s.log.Debug("discarding stale version list", zap.String("file_id", fileID))
		return nil
	}
	if err != nil {
		s.panel = VersionPanelState{}
		return fmt.Errorf("failed to load versions: %w", err)
	}

	// The service is expected to return versions ascending, but that was
	// never a hard contract. Sorting here keeps the panel stable either way.
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].VersionNumber < versions[j].VersionNumber
	})
	s.panel = VersionPanelState{ActiveFileID: &id, Versions: versions}
	return nil
}

// VersionPanel returns a snapshot of the version panel state.
func (s *Session) VersionPanel() VersionPanelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.panel
	snapshot.Versions = append([]models.VersionRecord(nil), s.panel.Versions...)
	return snapshot
}

// RestoreVersion downloads one version's content and hands it to the user
// as a named file. The filename is prefixed with a fragment of the version
// id so multiple restored copies stay distinguishable. Neither the version
// list nor the listing is mutated.
func (s *Session) RestoreVersion(ctx context.Context, fileID, versionID, displayName string) error {
	body, err := s.drive.DownloadVersion(ctx, fileID, versionID)
	if err != nil {
		return fmt.Errorf("failed to download version: %w", err)
	}
	defer body.Close()

	name := restoredName(versionID, displayName)
	if err := s.delivery.Deliver(name, body); err != nil {
		return fmt.Errorf("failed to deliver restored file: %w", err)
	}
	s.log.Info("version restored", zap.String("file_id", fileID), zap.String("name", name))
	return nil
}

func restoredName(versionID, displayName string) string {
	prefix := versionID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return prefix + "_" + displayName
}
