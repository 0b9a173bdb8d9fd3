// Package browser implements the navigation-and-synchronization engine of
// the drive client: the navigation stack, the listing lifecycle, the
// per-file version panel, and the mutating operations that feed back into a
// listing refresh.
package browser

import (
	"context"
	"io"
	"sync"

	"clouddrive/models"

	"go.uber.org/zap"
)

// driveAPI is the slice of the storage client the session needs.
type driveAPI interface {
	ListEntries(ctx context.Context, folderID *string) ([]models.Entry, error)
	UploadFile(ctx context.Context, name string, content io.Reader, parentID *string) error
	UploadArchive(ctx context.Context, name string, content io.Reader, parentID *string) error
	CreateFolder(ctx context.Context, name string, parentID *string) error
	Rename(ctx context.Context, entryID, newName string) error
	Delete(ctx context.Context, entryID string) error
	Download(ctx context.Context, entryID string) (io.ReadCloser, error)
	ListVersions(ctx context.Context, fileID string) ([]models.VersionRecord, error)
	DownloadVersion(ctx context.Context, fileID, versionID string) (io.ReadCloser, error)
}

// Confirmer gates irreversible operations behind an explicit yes/no answer.
// The presentation layer decides how to ask.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Delivery hands a named byte stream to the user, e.g. by saving it into a
// downloads directory.
type Delivery interface {
	Deliver(name string, content io.Reader) error
}

// ListingPhase is the lifecycle stage of one listing fetch.
type ListingPhase int

const (
	ListingLoading ListingPhase = iota
	ListingLoaded
	ListingFailed
)

// ListingState is created on every navigation, moves to Loaded or Failed
// exactly once per fetch cycle, and is replaced on the next navigation.
type ListingState struct {
	Phase   ListingPhase
	Entries []models.Entry
	Err     string
}

// Session owns the browsing state for one signed-in user: the navigation
// stack, the current listing, the version panel, and the pending upload
// selection. It is safe for concurrent use; in-flight fetch results are
// applied only if their issue-time sequence number is still current, so a
// response for a folder the user has since left is discarded.
type Session struct {
	drive    driveAPI
	confirm  Confirmer
	delivery Delivery
	log      *zap.Logger

	mu  sync.Mutex
	nav *NavStack

	listing    ListingState
	listingSeq uint64

	panel    VersionPanelState
	panelSeq uint64

	selectedName string
	selectedOpen FileOpener
	archiveMode  bool
}

// Dependencies configuration for creating a session
type Dependencies struct {
	Drive    driveAPI
	Confirm  Confirmer
	Delivery Delivery
	Logger   *zap.Logger

	// RootLabel is the name shown for the root folder. Defaults to
	// "My Drive".
	RootLabel string
}

// NewSession creates a session positioned at the root with a fresh listing
// lifecycle.
func NewSession(d *Dependencies) *Session {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rootLabel := d.RootLabel
	if rootLabel == "" {
		rootLabel = "My Drive"
	}

	return &Session{
		drive:    d.Drive,
		confirm:  d.Confirm,
		delivery: d.Delivery,
		log:      log,
		nav:      NewNavStack(rootLabel),
		listing:  ListingState{Phase: ListingLoading},
	}
}

// EnterFolder descends into a folder and resets the listing and version
// panel for the new location.
func (s *Session) EnterFolder(targetID, targetName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if targetID == "" {
		return
	}
	s.nav.EnterFolder(targetID, targetName)
	s.invalidateLocked()
}

// GoUp returns to the previous folder and resets the listing and version
// panel. At the root it stays at the root.
func (s *Session) GoUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.GoUp()
	s.invalidateLocked()
}

// invalidateLocked bumps the fetch sequences so an in-flight result for the
// previous location cannot be applied, and resets the per-folder state.
func (s *Session) invalidateLocked() {
	s.listingSeq++
	s.listing = ListingState{Phase: ListingLoading}
	s.panelSeq++
	s.panel = VersionPanelState{}
}

// ActiveFolderID returns the id of the folder being viewed, nil at the root.
func (s *Session) ActiveFolderID() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.ActiveFolderID()
}

// ActiveFolderName returns the displayed name of the folder being viewed.
func (s *Session) ActiveFolderName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.ActiveFolderName()
}

// Breadcrumb returns the root-to-current folder path.
func (s *Session) Breadcrumb() []models.FolderFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Breadcrumb()
}

// Refresh fetches the listing for the active folder. The last issued
// refresh wins: a result arriving after a newer navigation or refresh is
// dropped without touching the listing.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.listingSeq++
	seq := s.listingSeq
	folderID := s.nav.ActiveFolderID()
	s.listing = ListingState{Phase: ListingLoading}
	s.mu.Unlock()

	entries, err := s.drive.ListEntries(ctx, folderID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.listingSeq {
		s.log.Debug("discarding stale listing result", zap.Uint64("seq", seq))
		return nil
	}
	if err != nil {
		s.listing = ListingState{Phase: ListingFailed, Err: err.Error()}
		return err
	}
	s.listing = ListingState{Phase: ListingLoaded, Entries: entries}
	return nil
}

// Listing returns a snapshot of the current listing state.
func (s *Session) Listing() ListingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.listing
	snapshot.Entries = append([]models.Entry(nil), s.listing.Entries...)
	return snapshot
}
