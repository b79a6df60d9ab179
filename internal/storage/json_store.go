package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/vocealarm/internal/models"
)

type Store struct {
	Version  int                     `json:"version"`
	Settings Settings                `json:"settings"`
	Alarms   map[string]models.Alarm `json:"alarms"`
	Spaces   map[string]models.Space `json:"spaces"`
	Notes    map[string]models.Note  `json:"notes"`
	Messages []models.Message        `json:"messages"`
}

type JSONStore struct {
	path string

	mu    sync.RWMutex
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version:  1,
		Settings: DefaultSettings(),
		Alarms:   make(map[string]models.Alarm),
		Spaces:   make(map[string]models.Space),
		Notes:    make(map[string]models.Note),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'vocealarm init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	// Ensure maps are initialized
	if s.store.Alarms == nil {
		s.store.Alarms = make(map[string]models.Alarm)
	}
	if s.store.Spaces == nil {
		s.store.Spaces = make(map[string]models.Space)
	}
	if s.store.Notes == nil {
		s.store.Notes = make(map[string]models.Note)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes the whole store document atomically: serialize, write to a
// temp file, rename over the target. Losing the alarm collection to a
// partial write is unacceptable, so a failed write is retried once before
// the error is surfaced.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := s.writeAtomic(data); err != nil {
		if retryErr := s.writeAtomic(data); retryErr != nil {
			return fmt.Errorf("failed to write storage: %w", retryErr)
		}
	}

	return nil
}

func (s *JSONStore) writeAtomic(data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONStore) loaded() error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return Settings{}, err
	}
	return s.store.Settings, nil
}

func (s *JSONStore) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Settings = settings
	return s.save()
}

func (s *JSONStore) AddAlarm(alarm models.Alarm) (models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return models.Alarm{}, err
	}

	if alarm.ID == "" {
		alarm.ID = uuid.New().String()
	}
	if alarm.CreatedAt.IsZero() {
		alarm.CreatedAt = time.Now()
	}

	s.store.Alarms[alarm.ID] = alarm
	if err := s.save(); err != nil {
		return models.Alarm{}, err
	}
	return alarm, nil
}

func (s *JSONStore) GetAlarm(id string) (models.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return models.Alarm{}, err
	}

	alarm, ok := s.store.Alarms[id]
	if !ok {
		return models.Alarm{}, fmt.Errorf("alarm %s: %w", id, ErrNotFound)
	}
	return alarm, nil
}

func (s *JSONStore) GetAllAlarms() ([]models.Alarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return nil, err
	}

	alarms := make([]models.Alarm, 0, len(s.store.Alarms))
	for _, alarm := range s.store.Alarms {
		alarms = append(alarms, alarm)
	}
	sortAlarms(alarms)
	return alarms, nil
}

func (s *JSONStore) UpdateAlarm(alarm models.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}

	if _, ok := s.store.Alarms[alarm.ID]; !ok {
		return fmt.Errorf("alarm %s: %w", alarm.ID, ErrNotFound)
	}
	s.store.Alarms[alarm.ID] = alarm
	return s.save()
}

// DeleteAlarm removes the record together with any attached voice recording.
func (s *JSONStore) DeleteAlarm(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}

	if _, ok := s.store.Alarms[id]; !ok {
		return fmt.Errorf("alarm %s: %w", id, ErrNotFound)
	}
	delete(s.store.Alarms, id)
	return s.save()
}

func (s *JSONStore) ToggleAlarm(id string) (models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return models.Alarm{}, err
	}

	alarm, ok := s.store.Alarms[id]
	if !ok {
		return models.Alarm{}, fmt.Errorf("alarm %s: %w", id, ErrNotFound)
	}
	alarm.IsEnabled = !alarm.IsEnabled
	s.store.Alarms[id] = alarm
	if err := s.save(); err != nil {
		return models.Alarm{}, err
	}
	return alarm, nil
}

// DuplicateAlarm copies an alarm under a new id. Copies never start enabled
// so a duplicate cannot double-fire next to its original.
func (s *JSONStore) DuplicateAlarm(id string) (models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return models.Alarm{}, err
	}

	alarm, ok := s.store.Alarms[id]
	if !ok {
		return models.Alarm{}, fmt.Errorf("alarm %s: %w", id, ErrNotFound)
	}

	dup := alarm
	dup.ID = uuid.New().String()
	dup.CreatedAt = time.Now()
	dup.IsEnabled = false
	dup.LastTriggered = nil

	s.store.Alarms[dup.ID] = dup
	if err := s.save(); err != nil {
		return models.Alarm{}, err
	}
	return dup, nil
}

func (s *JSONStore) AddSpace(space models.Space) (models.Space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return models.Space{}, err
	}

	now := time.Now()
	if space.ID == "" {
		space.ID = uuid.New().String()
	}
	if space.CreatedAt.IsZero() {
		space.CreatedAt = now
	}
	space.UpdatedAt = now

	s.store.Spaces[space.ID] = space
	if err := s.save(); err != nil {
		return models.Space{}, err
	}
	return space, nil
}

func (s *JSONStore) GetSpace(id string) (models.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return models.Space{}, err
	}

	space, ok := s.store.Spaces[id]
	if !ok {
		return models.Space{}, fmt.Errorf("space %s: %w", id, ErrNotFound)
	}
	return space, nil
}

func (s *JSONStore) GetAllSpaces() ([]models.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return nil, err
	}

	spaces := make([]models.Space, 0, len(s.store.Spaces))
	for _, space := range s.store.Spaces {
		spaces = append(spaces, space)
	}
	sort.Slice(spaces, func(i, j int) bool {
		if !spaces[i].CreatedAt.Equal(spaces[j].CreatedAt) {
			return spaces[i].CreatedAt.Before(spaces[j].CreatedAt)
		}
		return spaces[i].ID < spaces[j].ID
	})
	return spaces, nil
}

func (s *JSONStore) RenameSpace(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}

	space, ok := s.store.Spaces[id]
	if !ok {
		return fmt.Errorf("space %s: %w", id, ErrNotFound)
	}
	space.Name = name
	space.UpdatedAt = time.Now()
	s.store.Spaces[id] = space
	return s.save()
}

// DeleteSpace cascades to the notes it contains.
func (s *JSONStore) DeleteSpace(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}

	if _, ok := s.store.Spaces[id]; !ok {
		return fmt.Errorf("space %s: %w", id, ErrNotFound)
	}
	delete(s.store.Spaces, id)
	for noteID, note := range s.store.Notes {
		if note.SpaceID == id {
			delete(s.store.Notes, noteID)
		}
	}
	return s.save()
}

func (s *JSONStore) AddNote(note models.Note) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return models.Note{}, err
	}

	if _, ok := s.store.Spaces[note.SpaceID]; !ok {
		return models.Note{}, fmt.Errorf("space %s: %w", note.SpaceID, ErrNotFound)
	}

	now := time.Now()
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	s.store.Notes[note.ID] = note

	// Adding a note refreshes its space's updated timestamp
	space := s.store.Spaces[note.SpaceID]
	space.UpdatedAt = now
	s.store.Spaces[note.SpaceID] = space

	if err := s.save(); err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func (s *JSONStore) GetNote(id string) (models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return models.Note{}, err
	}

	note, ok := s.store.Notes[id]
	if !ok {
		return models.Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	return note, nil
}

func (s *JSONStore) GetNotesBySpace(spaceID string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0)
	for _, note := range s.store.Notes {
		if note.SpaceID == spaceID {
			notes = append(notes, note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}

func (s *JSONStore) UpdateNote(note models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}

	if _, ok := s.store.Notes[note.ID]; !ok {
		return fmt.Errorf("note %s: %w", note.ID, ErrNotFound)
	}
	note.UpdatedAt = time.Now()
	s.store.Notes[note.ID] = note
	return s.save()
}

func (s *JSONStore) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}

	if _, ok := s.store.Notes[id]; !ok {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	delete(s.store.Notes, id)
	return s.save()
}

func (s *JSONStore) AddMessage(msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return models.Message{}, err
	}

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	s.store.Messages = append(s.store.Messages, msg)
	if err := s.save(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (s *JSONStore) GetMessages() ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.loaded(); err != nil {
		return nil, err
	}
	msgs := make([]models.Message, len(s.store.Messages))
	copy(msgs, s.store.Messages)
	return msgs, nil
}

func (s *JSONStore) ClearMessages() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Messages = nil
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// sortAlarms fixes the repository iteration order: oldest first, id as
// tie-break. The scheduler's "first match wins" rule depends on this being
// stable.
func sortAlarms(alarms []models.Alarm) {
	sort.Slice(alarms, func(i, j int) bool {
		if !alarms[i].CreatedAt.Equal(alarms[j].CreatedAt) {
			return alarms[i].CreatedAt.Before(alarms[j].CreatedAt)
		}
		return alarms[i].ID < alarms[j].ID
	})
}
