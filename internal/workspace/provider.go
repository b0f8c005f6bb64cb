// Package workspace defines the agent workspace file-system abstraction.
//
// The workspace is a directory of Markdown files split into well-known
// subtrees: knowledge/ for reference notes, memory/ for daily journals,
// and attachments/ for uploaded assets.
package workspace

import "github.com/kitfox/den/internal/models"

// Well-known subdirectories of the workspace root.
const (
	KnowledgeDir   = "knowledge"
	MemoryDir      = "memory"
	AttachmentsDir = "attachments"
)

// Provider is the interface for workspace file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to workspace root).
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path (relative to workspace root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to workspace root).
	Write(path string, content []byte) error
	// Append atomically appends content to the file at path, creating it
	// (with the given header) when it does not exist yet.
	Append(path string, header, content []byte) error
	// Delete removes the file at path (relative to workspace root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to workspace root).
	Move(oldPath, newPath string) error
}
