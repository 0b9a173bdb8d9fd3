package models

// FolderFrame is one step on the path from the root to the folder being
// viewed. A nil ID means the root folder.
type FolderFrame struct {
	ID   *string
	Name string
}
