// Package cloud backs up snapshot documents to an external storage provider.
package cloud

import (
	"context"
	"fmt"
	"time"
)

// BackupName builds the canonical backup file name for the given moment.
func BackupName(now time.Time) string {
	return fmt.Sprintf("backup-%d.json", now.UnixMilli())
}

// Backup describes one stored backup file.
type Backup struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Provider is a remote backup target. Implementations must be safe for
// concurrent use.
type Provider interface {
	// Name identifies the provider ("dropbox").
	Name() string

	// AuthURL builds the URL the user visits to grant access. state is
	// echoed back on the redirect for CSRF protection.
	AuthURL(state string) string

	// Connect stores the access token obtained from the grant redirect.
	Connect(ctx context.Context, token string) error

	// Connected reports whether a token is on file.
	Connected(ctx context.Context) bool

	// Logout discards the stored token.
	Logout(ctx context.Context) error

	// Upload writes data under the given file name and returns its
	// remote path.
	Upload(ctx context.Context, name string, data []byte) (string, error)

	// List returns the stored backups, newest first.
	List(ctx context.Context) ([]Backup, error)

	// Download fetches one backup by its remote path.
	Download(ctx context.Context, path string) ([]byte, error)
}
