package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clouddrive/models"

	"github.com/go-resty/resty/v2"
)

// TokenSource provides the current bearer credential. It is consulted
// before every request, so a credential rotated mid-session takes effect
// on the next call without re-wiring any client.
type TokenSource interface {
	Token() string
}

// StatusError is returned for a non-2xx response and carries the status
// code and response text for the user-facing message.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// DriveClient client for working with the cloud drive file API
type DriveClient struct {
	BaseURL string
	client  *resty.Client
}

// NewDriveClient creates a new drive client. tokens may be nil for an
// unauthenticated client.
func NewDriveClient(baseURL string, tokens TokenSource) *DriveClient {
	client := resty.New()
	if tokens != nil {
		client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if t := tokens.Token(); t != "" {
				r.SetHeader("Authorization", "Bearer "+t)
			}
			return nil
		})
	}

	return &DriveClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func statusErr(resp *resty.Response) error {
	return &StatusError{
		Code: resp.StatusCode(),
		Body: strings.TrimSpace(string(resp.Body())),
	}
}

// ListEntries gets the entries of a folder. A nil folderID means the root;
// the scoping parameter is omitted entirely in that case.
func (dc *DriveClient) ListEntries(ctx context.Context, folderID *string) ([]models.Entry, error) {
	req := dc.client.R().SetContext(ctx)
	if folderID != nil {
		req.SetQueryParam("folder_id", *folderID)
	}

	resp, err := req.Get(dc.BaseURL + "/files")
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, statusErr(resp)
	}

	return decodeListing(resp.Body()), nil
}

// decodeListing extracts the entry sequence from a listing response. The
// envelope is not contractually fixed: a bare array and an {"items": [...]}
// wrapper are both accepted, any other shape yields an empty listing.
func decodeListing(body []byte) []models.Entry {
	var entries []models.Entry
	if err := json.Unmarshal(body, &entries); err == nil && entries != nil {
		return entries
	}

	var wrapper struct {
		Items []models.Entry `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Items != nil {
		return wrapper.Items
	}

	return []models.Entry{}
}

// UploadFile uploads a single file verbatim
func (dc *DriveClient) UploadFile(ctx context.Context, name string, content io.Reader, parentID *string) error {
	return dc.upload(ctx, dc.BaseURL+"/files", name, content, parentID)
}

// UploadArchive uploads an archive for server-side extraction
func (dc *DriveClient) UploadArchive(ctx context.Context, name string, content io.Reader, parentID *string) error {
	return dc.upload(ctx, dc.BaseURL+"/files/zip", name, content, parentID)
}

// upload builds the multipart payload. The parent_id field is only present
// when a parent folder is given; targeting the root means omitting the
// field, not sending it empty.
func (dc *DriveClient) upload(ctx context.Context, url, name string, content io.Reader, parentID *string) error {
	req := dc.client.R().
		SetContext(ctx).
		SetFileReader("file", name, content)
	if parentID != nil {
		req.SetFormData(map[string]string{"parent_id": *parentID})
	}

	resp, err := req.Post(url)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return statusErr(resp)
	}

	return nil
}

type createFolderRequest struct {
	FolderName     string  `json:"folder_name"`
	ParentFolderID *string `json:"parent_folder_id"`
}

// CreateFolder creates a folder. A nil parentID nests it under the root.
func (dc *DriveClient) CreateFolder(ctx context.Context, name string, parentID *string) error {
	resp, err := dc.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(createFolderRequest{FolderName: name, ParentFolderID: parentID}).
		Post(dc.BaseURL + "/files/folders")
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return statusErr(resp)
	}

	return nil
}

// Rename changes an entry's display name
func (dc *DriveClient) Rename(ctx context.Context, entryID, newName string) error {
	resp, err := dc.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"new_name": newName}).
		Patch(dc.BaseURL + "/files/" + entryID + "/rename")
	if err != nil {
		return fmt.Errorf("failed to rename entry: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return statusErr(resp)
	}

	return nil
}

// Delete removes an entry
func (dc *DriveClient) Delete(ctx context.Context, entryID string) error {
	resp, err := dc.client.R().
		SetContext(ctx).
		Delete(dc.BaseURL + "/files/" + entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return statusErr(resp)
	}

	return nil
}

// Download streams a file's current content
func (dc *DriveClient) Download(ctx context.Context, entryID string) (io.ReadCloser, error) {
	return dc.download(ctx, dc.BaseURL+"/files/"+entryID+"/download")
}

// ListVersions gets the version history of a file
func (dc *DriveClient) ListVersions(ctx context.Context, fileID string) ([]models.VersionRecord, error) {
	resp, err := dc.client.R().
		SetContext(ctx).
		Get(dc.BaseURL + "/files/" + fileID + "/versions")
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, statusErr(resp)
	}

	var versions []models.VersionRecord
	if err := json.Unmarshal(resp.Body(), &versions); err != nil {
		return nil, fmt.Errorf("failed to parse versions response: %w", err)
	}

	return versions, nil
}

// DownloadVersion streams the content of one stored version
func (dc *DriveClient) DownloadVersion(ctx context.Context, fileID, versionID string) (io.ReadCloser, error) {
	return dc.download(ctx, dc.BaseURL+"/files/"+fileID+"/versions/"+versionID+"/download")
}

func (dc *DriveClient) download(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := dc.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		body, _ := io.ReadAll(resp.RawBody())
		resp.RawBody().Close()
		return nil, &StatusError{Code: resp.StatusCode(), Body: strings.TrimSpace(string(body))}
	}

	return resp.RawBody(), nil
}
