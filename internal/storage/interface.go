package storage

import "github.com/julianstephens/vocealarm/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Alarms
	AddAlarm(models.Alarm) (models.Alarm, error)
	GetAlarm(id string) (models.Alarm, error)
	GetAllAlarms() ([]models.Alarm, error)
	UpdateAlarm(models.Alarm) error
	DeleteAlarm(id string) error
	ToggleAlarm(id string) (models.Alarm, error)
	DuplicateAlarm(id string) (models.Alarm, error)

	// Spaces
	AddSpace(models.Space) (models.Space, error)
	GetSpace(id string) (models.Space, error)
	GetAllSpaces() ([]models.Space, error)
	RenameSpace(id, name string) error
	DeleteSpace(id string) error

	// Notes
	AddNote(models.Note) (models.Note, error)
	GetNote(id string) (models.Note, error)
	GetNotesBySpace(spaceID string) ([]models.Note, error)
	UpdateNote(models.Note) error
	DeleteNote(id string) error

	// Chat history
	AddMessage(models.Message) (models.Message, error)
	GetMessages() ([]models.Message, error)
	ClearMessages() error

	// Utils
	GetConfigPath() string
}
