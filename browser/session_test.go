package browser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"clouddrive/models"
)

func TestRefreshLoadsEntries(t *testing.T) {
	drive := &fakeDrive{
		listEntries: func(ctx context.Context, folderID *string) ([]models.Entry, error) {
			return []models.Entry{
				{ID: "1", Name: "Docs", IsFolder: true},
				{ID: "2", Name: "report.pdf", Size: 1234},
			}, nil
		},
	}
	s := newTestSession(drive, nil, nil)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listing := s.Listing()
	if listing.Phase != ListingLoaded {
		t.Fatalf("expected Loaded, got %v", listing.Phase)
	}
	if len(listing.Entries) != 2 || listing.Entries[0].Name != "Docs" {
		t.Errorf("unexpected entries: %+v", listing.Entries)
	}
}

func TestRefreshFailureSetsFailedState(t *testing.T) {
	drive := &fakeDrive{
		listEntries: func(ctx context.Context, folderID *string) ([]models.Entry, error) {
			return nil, errors.New("status 500: boom")
		},
	}
	s := newTestSession(drive, nil, nil)

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}

	listing := s.Listing()
	if listing.Phase != ListingFailed {
		t.Fatalf("expected Failed, got %v", listing.Phase)
	}
	if listing.Err != "status 500: boom" {
		t.Errorf("unexpected error text: %q", listing.Err)
	}
}

func TestStaleListingResultDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	drive := &fakeDrive{}
	drive.listEntries = func(ctx context.Context, folderID *string) ([]models.Entry, error) {
		if folderID == nil {
			// Slow fetch for the root listing.
			close(started)
			<-release
			return []models.Entry{{ID: "stale", Name: "old.txt"}}, nil
		}
		return []models.Entry{{ID: "fresh", Name: "inside.txt"}}, nil
	}
	s := newTestSession(drive, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Refresh(context.Background()) // fetch for the root, resolves late
	}()
	<-started

	// User navigates away before the root response arrives.
	s.EnterFolder("b", "Beta")
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(release)
	wg.Wait()

	listing := s.Listing()
	if listing.Phase != ListingLoaded {
		t.Fatalf("expected Loaded, got %v", listing.Phase)
	}
	if len(listing.Entries) != 1 || listing.Entries[0].ID != "fresh" {
		t.Errorf("stale root result overwrote the listing: %+v", listing.Entries)
	}
}

func TestLastRefreshWinsForSameFolder(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	first := true

	drive := &fakeDrive{}
	var mu sync.Mutex
	drive.listEntries = func(ctx context.Context, folderID *string) ([]models.Entry, error) {
		mu.Lock()
		slow := first
		first = false
		mu.Unlock()
		if slow {
			close(started)
			<-release
			return []models.Entry{{ID: "old"}}, nil
		}
		return []models.Entry{{ID: "new"}}, nil
	}
	s := newTestSession(drive, nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Refresh(context.Background())
	}()
	<-started

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)
	wg.Wait()

	listing := s.Listing()
	if len(listing.Entries) != 1 || listing.Entries[0].ID != "new" {
		t.Errorf("superseded refresh overwrote the newer one: %+v", listing.Entries)
	}
}

func TestNavigationResetsListingAndPanel(t *testing.T) {
	drive := &fakeDrive{
		listEntries: func(ctx context.Context, folderID *string) ([]models.Entry, error) {
			return []models.Entry{{ID: "f", Name: "file.txt"}}, nil
		},
		listVersions: func(ctx context.Context, fileID string) ([]models.VersionRecord, error) {
			return []models.VersionRecord{{ID: "v1", VersionNumber: 1}}, nil
		},
	}
	s := newTestSession(drive, nil, nil)

	s.Refresh(context.Background())
	s.ToggleVersions(context.Background(), "f")
	if s.VersionPanel().ActiveFileID == nil {
		t.Fatal("panel should be expanded before navigating")
	}

	s.EnterFolder("sub", "Sub")

	if s.Listing().Phase != ListingLoading {
		t.Errorf("listing should reset to Loading on navigation")
	}
	if s.VersionPanel().ActiveFileID != nil {
		t.Errorf("version panel should collapse on navigation")
	}
}

// The create-navigate-return walkthrough: create a folder at the root, step
// into it, find it empty, and step back out to the original listing.
func TestCreateEnterAndReturnScenario(t *testing.T) {
	ctx := context.Background()

	folders := map[string][]models.Entry{}
	rootEntries := []models.Entry{}

	drive := &fakeDrive{}
	drive.listEntries = func(ctx context.Context, folderID *string) ([]models.Entry, error) {
		if folderID == nil {
			return rootEntries, nil
		}
		return folders[*folderID], nil
	}
	drive.createFolder = func(ctx context.Context, name string, parentID *string) error {
		if parentID != nil {
			t.Errorf("expected folder created at root, got parent %q", *parentID)
		}
		rootEntries = append(rootEntries, models.Entry{ID: "docs-id", Name: name, IsFolder: true})
		folders["docs-id"] = nil
		return nil
	}
	s := newTestSession(drive, nil, nil)

	if err := s.CreateFolder(ctx, "Docs"); err != nil {
		t.Fatalf("create folder: %v", err)
	}

	listing := s.Listing()
	if listing.Phase != ListingLoaded || len(listing.Entries) != 1 {
		t.Fatalf("expected refreshed root with one entry, got %+v", listing)
	}
	if !listing.Entries[0].IsFolder || listing.Entries[0].Name != "Docs" {
		t.Fatalf("expected folder Docs, got %+v", listing.Entries[0])
	}

	s.EnterFolder(listing.Entries[0].ID, listing.Entries[0].Name)
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh inside Docs: %v", err)
	}
	inside := s.Listing()
	if inside.Phase != ListingLoaded || len(inside.Entries) != 0 {
		t.Fatalf("expected empty folder, got %+v", inside)
	}

	s.GoUp()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh at root: %v", err)
	}
	back := s.Listing()
	if len(back.Entries) != 1 || back.Entries[0].Name != "Docs" {
		t.Fatalf("expected original root listing including Docs, got %+v", back.Entries)
	}
	if s.ActiveFolderID() != nil {
		t.Errorf("expected to be back at root")
	}
}
