package browser

import (
	"context"
	"io"
	"strings"
	"sync"

	"clouddrive/models"

	"go.uber.org/zap"
)

// fakeDrive implements driveAPI with overridable behavior per call and a
// record of which calls were made.
type fakeDrive struct {
	mu    sync.Mutex
	calls []string

	listEntries     func(ctx context.Context, folderID *string) ([]models.Entry, error)
	uploadFile      func(ctx context.Context, name string, content io.Reader, parentID *string) error
	uploadArchive   func(ctx context.Context, name string, content io.Reader, parentID *string) error
	createFolder    func(ctx context.Context, name string, parentID *string) error
	rename          func(ctx context.Context, entryID, newName string) error
	deleteEntry     func(ctx context.Context, entryID string) error
	download        func(ctx context.Context, entryID string) (io.ReadCloser, error)
	listVersions    func(ctx context.Context, fileID string) ([]models.VersionRecord, error)
	downloadVersion func(ctx context.Context, fileID, versionID string) (io.ReadCloser, error)
}

func (f *fakeDrive) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeDrive) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeDrive) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeDrive) ListEntries(ctx context.Context, folderID *string) ([]models.Entry, error) {
	f.record("ListEntries")
	if f.listEntries != nil {
		return f.listEntries(ctx, folderID)
	}
	return nil, nil
}

func (f *fakeDrive) UploadFile(ctx context.Context, name string, content io.Reader, parentID *string) error {
	f.record("UploadFile")
	if f.uploadFile != nil {
		return f.uploadFile(ctx, name, content, parentID)
	}
	return nil
}

func (f *fakeDrive) UploadArchive(ctx context.Context, name string, content io.Reader, parentID *string) error {
	f.record("UploadArchive")
	if f.uploadArchive != nil {
		return f.uploadArchive(ctx, name, content, parentID)
	}
	return nil
}

func (f *fakeDrive) CreateFolder(ctx context.Context, name string, parentID *string) error {
	f.record("CreateFolder")
	if f.createFolder != nil {
		return f.createFolder(ctx, name, parentID)
	}
	return nil
}

func (f *fakeDrive) Rename(ctx context.Context, entryID, newName string) error {
	f.record("Rename")
	if f.rename != nil {
		return f.rename(ctx, entryID, newName)
	}
	return nil
}

func (f *fakeDrive) Delete(ctx context.Context, entryID string) error {
	f.record("Delete")
	if f.deleteEntry != nil {
		return f.deleteEntry(ctx, entryID)
	}
	return nil
}

func (f *fakeDrive) Download(ctx context.Context, entryID string) (io.ReadCloser, error) {
	f.record("Download")
	if f.download != nil {
		return f.download(ctx, entryID)
	}
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeDrive) ListVersions(ctx context.Context, fileID string) ([]models.VersionRecord, error) {
	f.record("ListVersions")
	if f.listVersions != nil {
		return f.listVersions(ctx, fileID)
	}
	return nil, nil
}

func (f *fakeDrive) DownloadVersion(ctx context.Context, fileID, versionID string) (io.ReadCloser, error) {
	f.record("DownloadVersion")
	if f.downloadVersion != nil {
		return f.downloadVersion(ctx, fileID, versionID)
	}
	return io.NopCloser(strings.NewReader("")), nil
}

// fakeConfirmer answers every prompt the same way and remembers the prompts.
type fakeConfirmer struct {
	answer  bool
	prompts []string
}

func (f *fakeConfirmer) Confirm(prompt string) bool {
	f.prompts = append(f.prompts, prompt)
	return f.answer
}

// captureDelivery stores the last delivered name and content.
type captureDelivery struct {
	name string
	data []byte
	err  error
}

func (c *captureDelivery) Deliver(name string, content io.Reader) error {
	if c.err != nil {
		return c.err
	}
	c.name = name
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	c.data = data
	return nil
}

func newTestSession(drive *fakeDrive, confirm *fakeConfirmer, delivery *captureDelivery) *Session {
	if confirm == nil {
		confirm = &fakeConfirmer{answer: true}
	}
	if delivery == nil {
		delivery = &captureDelivery{}
	}
	return NewSession(&Dependencies{
		Drive:    drive,
		Confirm:  confirm,
		Delivery: delivery,
		Logger:   zap.NewNop(),
	})
}
