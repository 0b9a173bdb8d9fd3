package browser

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CreateFolder creates a folder inside the active folder and refreshes the
// listing. An empty or whitespace-only name aborts without a request.
func (s *Session) CreateFolder(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	s.mu.Lock()
	parentID := s.nav.ActiveFolderID()
	s.mu.Unlock()

	if err := s.drive.CreateFolder(ctx, name, parentID); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	s.log.Info("folder created", zap.String("name", name))
	return s.Refresh(ctx)
}

// Rename changes an entry's name and refreshes the listing. An empty or
// unchanged name is a no-op with no request.
func (s *Session) Rename(ctx context.Context, entryID, currentName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == currentName {
		return nil
	}

	if err := s.drive.Rename(ctx, entryID, newName); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	s.log.Info("entry renamed", zap.String("id", entryID), zap.String("name", newName))
	return s.Refresh(ctx)
}

// Delete removes an entry after explicit confirmation and refreshes the
// listing. Declining the confirmation issues no request at all.
func (s *Session) Delete(ctx context.Context, entryID, displayName string) error {
	if !s.confirm.Confirm(fmt.Sprintf("Delete %q? This cannot be undone.", displayName)) {
		return nil
	}

	if err := s.drive.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	s.log.Info("entry deleted", zap.String("id", entryID))
	return s.Refresh(ctx)
}

// Download fetches a file's current content and delivers it under its
// display name. No browsing state changes.
func (s *Session) Download(ctx context.Context, entryID, displayName string) error {
	body, err := s.drive.Download(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer body.Close()

	if err := s.delivery.Deliver(displayName, body); err != nil {
		return fmt.Errorf("failed to deliver file: %w", err)
	}
	return nil
}
