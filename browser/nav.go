package browser

import "clouddrive/models"

// NavStack tracks the path from the root to the folder being viewed. The
// frames record the folders the user came from; the active folder is held
// separately, so the top frame is always one step above the current view.
type NavStack struct {
	frames     []models.FolderFrame
	activeID   *string
	activeName string
	rootLabel  string
}

// NewNavStack creates a stack positioned at the root.
func NewNavStack(rootLabel string) *NavStack {
	return &NavStack{
		rootLabel:  rootLabel,
		activeName: rootLabel,
	}
}

// EnterFolder descends into the target folder, remembering the current one
// so GoUp can return to it. An empty target id is ignored.
func (n *NavStack) EnterFolder(targetID, targetName string) {
	if targetID == "" {
		return
	}
	n.frames = append(n.frames, models.FolderFrame{ID: n.activeID, Name: n.activeName})
	id := targetID
	n.activeID = &id
	n.activeName = targetName
}

// GoUp returns to the previous folder. With no history left it re-asserts
// the root, so going up from directly inside a root-level folder and
// repeated GoUp at the root are both well-defined.
func (n *NavStack) GoUp() {
	if len(n.frames) == 0 {
		n.activeID = nil
		n.activeName = n.rootLabel
		return
	}
	last := n.frames[len(n.frames)-1]
	n.frames = n.frames[:len(n.frames)-1]
	n.activeID = last.ID
	n.activeName = last.Name
}

// ActiveFolderID returns the id of the folder being viewed, nil at the root.
func (n *NavStack) ActiveFolderID() *string {
	return n.activeID
}

// ActiveFolderName returns the displayed name of the folder being viewed.
func (n *NavStack) ActiveFolderName() string {
	return n.activeName
}

// Depth returns how many folders deep the view is, 0 at the root.
func (n *NavStack) Depth() int {
	return len(n.frames)
}

// Breadcrumb returns the root-to-current path, ending with the active
// folder.
func (n *NavStack) Breadcrumb() []models.FolderFrame {
	crumbs := make([]models.FolderFrame, 0, len(n.frames)+1)
	crumbs = append(crumbs, n.frames...)
	crumbs = append(crumbs, models.FolderFrame{ID: n.activeID, Name: n.activeName})
	return crumbs
}
