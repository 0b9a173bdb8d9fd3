package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"clouddrive/browser"
	"clouddrive/models"
)

// stdinConfirmer implements browser.Confirmer with a y/N prompt.
type stdinConfirmer struct {
	in *bufio.Reader
}

func newStdinConfirmer() *stdinConfirmer {
	return &stdinConfirmer{in: bufio.NewReader(os.Stdin)}
}

func (c *stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// dirDelivery implements browser.Delivery by saving into a directory.
type dirDelivery struct {
	dir string
}

func (d *dirDelivery) Deliver(name string, content io.Reader) error {
	dir := d.dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

const shellHelp = `Commands:
  ls                      refresh and show the current folder
  open N                  enter the folder at index N
  up                      go to the parent folder
  mkdir NAME              create a folder here
  upload PATH [-z]        upload a local file (-z: unpack archive server-side)
  rename N NEW_NAME       rename the entry at index N
  rm N                    delete the entry at index N (asks first)
  download N              download the file at index N
  versions N              expand/collapse version history for the file at N
  restore N V             restore version number V of the file at N
  help                    show this help
  quit                    leave the shell`

// runShell drives the browsing session from stdin until quit or EOF.
func runShell(ctx context.Context, s *browser.Session) error {
	if err := s.Refresh(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	renderListing(s)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("\n%s> ", s.ActiveFolderName())
		if !in.Scan() {
			return in.Err()
		}

		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := fields[0], fields[1:]; cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Println(shellHelp)
		case "ls", "refresh":
			refreshAndRender(ctx, s)
		case "up":
			s.GoUp()
			refreshAndRender(ctx, s)
		case "open", "cd":
			entry, ok := entryAt(s, args)
			if !ok {
				continue
			}
			if !entry.IsFolder {
				fmt.Printf("%s is not a folder\n", entry.DisplayName())
				continue
			}
			s.EnterFolder(entry.ID, entry.DisplayName())
			refreshAndRender(ctx, s)
		case "mkdir":
			if len(args) == 0 {
				fmt.Println("Usage: mkdir NAME")
				continue
			}
			reportThenRender(s, s.CreateFolder(ctx, strings.Join(args, " ")))
		case "upload":
			runUpload(ctx, s, args)
		case "rename":
			if len(args) < 2 {
				fmt.Println("Usage: rename N NEW_NAME")
				continue
			}
			entry, ok := entryAt(s, args[:1])
			if !ok {
				continue
			}
			newName := strings.Join(args[1:], " ")
			reportThenRender(s, s.Rename(ctx, entry.ID, entry.DisplayName(), newName))
		case "rm":
			entry, ok := entryAt(s, args)
			if !ok {
				continue
			}
			reportThenRender(s, s.Delete(ctx, entry.ID, entry.DisplayName()))
		case "download":
			entry, ok := entryAt(s, args)
			if !ok {
				continue
			}
			if entry.IsFolder {
				fmt.Println("Folders cannot be downloaded")
				continue
			}
			if err := s.Download(ctx, entry.ID, entry.DisplayName()); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		case "versions":
			entry, ok := entryAt(s, args)
			if !ok {
				continue
			}
			if entry.IsFolder {
				fmt.Println("Folders have no versions")
				continue
			}
			if err := s.ToggleVersions(ctx, entry.ID); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			renderVersionPanel(s)
		case "restore":
			runRestore(ctx, s, args)
		default:
			fmt.Printf("Unknown command %q, try 'help'\n", cmd)
		}
	}
}

func runUpload(ctx context.Context, s *browser.Session, args []string) {
	var path string
	archive := false
	for _, a := range args {
		if a == "-z" || a == "--zip" {
			archive = true
			continue
		}
		path = a
	}
	if path == "" {
		fmt.Println("Usage: upload PATH [-z]")
		return
	}

	s.SelectFile(filepath.Base(path), func() (io.ReadCloser, error) {
		return os.Open(path)
	})
	s.SetArchiveMode(archive)

	if err := s.Upload(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if archive {
		fmt.Println("✅ Archive uploaded and unpacked")
	} else {
		fmt.Println("✅ Upload successful")
	}
	renderListing(s)
}

func runRestore(ctx context.Context, s *browser.Session, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: restore N V  (expand 'versions N' first)")
		return
	}
	entry, ok := entryAt(s, args[:1])
	if !ok {
		return
	}

	panel := s.VersionPanel()
	if panel.ActiveFileID == nil || *panel.ActiveFileID != entry.ID {
		fmt.Println("Expand the file's versions first with 'versions N'")
		return
	}

	versionNumber, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("Usage: restore N V")
		return
	}
	for _, v := range panel.Versions {
		if v.VersionNumber == versionNumber {
			if err := s.RestoreVersion(ctx, entry.ID, v.ID, entry.DisplayName()); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			return
		}
	}
	fmt.Printf("No version %d for %s\n", versionNumber, entry.DisplayName())
}

// entryAt resolves an index argument against the current listing.
func entryAt(s *browser.Session, args []string) (models.Entry, bool) {
	listing := s.Listing()
	if len(args) == 0 {
		fmt.Println("An entry index is required, see 'ls'")
		return models.Entry{}, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > len(listing.Entries) {
		fmt.Printf("No entry %q, indexes run 1-%d\n", args[0], len(listing.Entries))
		return models.Entry{}, false
	}
	return listing.Entries[i-1], true
}

func refreshAndRender(ctx context.Context, s *browser.Session) {
	if err := s.Refresh(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	renderListing(s)
}

func reportThenRender(s *browser.Session, err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
	renderListing(s)
}

func renderListing(s *browser.Session) {
	crumbs := s.Breadcrumb()
	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	fmt.Printf("\n📂 %s\n", strings.Join(names, " / "))

	listing := s.Listing()
	switch listing.Phase {
	case browser.ListingLoading:
		fmt.Println("Loading...")
	case browser.ListingFailed:
		fmt.Printf("Error: %s\n", listing.Err)
	case browser.ListingLoaded:
		if len(listing.Entries) == 0 {
			fmt.Println("Empty folder")
			return
		}
		for i, e := range listing.Entries {
			if e.IsFolder {
				fmt.Printf("%3d  📁 %s\n", i+1, e.DisplayName())
			} else {
				fmt.Printf("%3d  📄 %s  (%d bytes)\n", i+1, e.DisplayName(), e.Size)
			}
		}
	}
}

func renderVersionPanel(s *browser.Session) {
	panel := s.VersionPanel()
	if panel.ActiveFileID == nil {
		fmt.Println("Versions collapsed")
		return
	}
	if len(panel.Versions) == 0 {
		fmt.Println("No stored versions")
		return
	}
	for _, v := range panel.Versions {
		fmt.Printf("  v%d  %s  (%d bytes)\n", v.VersionNumber, v.UploadedAt.Format("2006-01-02 15:04"), v.Size)
	}
}
