package store

import "github.com/starford/laguz/internal/models"

// Store defines the persistence operations the rest of the application uses.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type Store interface {
	AllNotes() ([]models.Note, error)
	PutNote(n models.Note) error
	DeleteNote(id int64) error

	AllFolders() ([]models.Folder, error)
	PutFolder(f models.Folder) error
	DeleteFolder(id int64) error

	AllTags() ([]models.Tag, error)
	PutTag(t models.Tag) error
	DeleteTag(id int64) error

	PutImage(img models.Image) error
	GetImage(id string) (*models.Image, error)
	DeleteImage(id string) error

	GetState(key string) (string, error)
	PutState(key, value string) error
	DeleteState(key string) error

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
