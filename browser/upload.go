package browser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// FileOpener opens the staged local file for reading at upload time, so a
// file selected long before the upload is read fresh when it matters.
type FileOpener func() (io.ReadCloser, error)

// ErrNoFileSelected is returned by Upload when nothing is staged.
var ErrNoFileSelected = errors.New("no file selected")

// SelectFile stages a local file for the next upload, replacing any
// previous selection.
func (s *Session) SelectFile(name string, open FileOpener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedName = name
	s.selectedOpen = open
}

// ClearSelection drops the staged file.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedName = ""
	s.selectedOpen = nil
}

// SelectedFile returns the name of the staged file, "" when none.
func (s *Session) SelectedFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedName
}

// SetArchiveMode switches the next upload between verbatim storage and
// server-side archive extraction.
func (s *Session) SetArchiveMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archiveMode = enabled
}

// ArchiveMode reports whether archive extraction is requested.
func (s *Session) ArchiveMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archiveMode
}

// Upload sends the staged file to the service and refreshes the listing on
// success. It fails fast with ErrNoFileSelected before any request when
// nothing is staged. Archive mode routes to the extracting endpoint; the
// parent folder is attached only when the user is inside a folder.
func (s *Session) Upload(ctx context.Context) error {
	s.mu.Lock()
	name := s.selectedName
	open := s.selectedOpen
	archive := s.archiveMode
	parentID := s.nav.ActiveFolderID()
	s.mu.Unlock()

	if open == nil {
		return ErrNoFileSelected
	}

	content, err := open()
	if err != nil {
		return fmt.Errorf("failed to open selected file: %w", err)
	}
	defer content.Close()

	if archive {
		err = s.drive.UploadArchive(ctx, name, content, parentID)
	} else {
		err = s.drive.UploadFile(ctx, name, content, parentID)
	}
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	s.ClearSelection()
	s.log.Info("upload complete", zap.String("name", name), zap.Bool("archive", archive))
	return s.Refresh(ctx)
}
