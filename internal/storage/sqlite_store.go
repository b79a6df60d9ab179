package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/vocealarm/internal/migration"
	"github.com/julianstephens/vocealarm/internal/models"
)

// Migrations is the embedded schema history for the SQLite store.
var Migrations = []migration.Migration{
	{
		Version: 1,
		Name:    "initial schema",
		SQL: `
			CREATE TABLE settings (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				sound_notifications INTEGER NOT NULL DEFAULT 1,
				high_quality_audio INTEGER NOT NULL DEFAULT 1,
				noise_cancellation INTEGER NOT NULL DEFAULT 0,
				notifications_enabled INTEGER NOT NULL DEFAULT 1,
				snooze_min INTEGER NOT NULL DEFAULT 5,
				poll_sec INTEGER NOT NULL DEFAULT 10
			);
			CREATE TABLE alarms (
				id TEXT PRIMARY KEY,
				time TEXT NOT NULL,
				date TEXT NOT NULL,
				label TEXT NOT NULL DEFAULT '',
				is_enabled INTEGER NOT NULL DEFAULT 0,
				repeat_days TEXT NOT NULL DEFAULT '[]',
				severity TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				last_triggered TIMESTAMP,
				recording_id TEXT,
				recording_audio BLOB,
				recording_duration REAL,
				recording_created_at TIMESTAMP
			);
			CREATE TABLE spaces (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE TABLE notes (
				id TEXT PRIMARY KEY,
				space_id TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL DEFAULT '',
				recording_id TEXT,
				recording_audio BLOB,
				recording_duration REAL,
				recording_created_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX idx_notes_space ON notes(space_id);
			CREATE TABLE messages (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL,
				text TEXT NOT NULL,
				is_user INTEGER NOT NULL,
				created_at TIMESTAMP NOT NULL
			);
		`,
	},
}

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(s.db, Migrations)
	if _, err := runner.ApplyMigrations(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Seed default settings if the row is missing
	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'vocealarm init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(s.db, Migrations)
	return runner.ValidateVersion()
}

// GetDB exposes the underlying connection for diagnostics.
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
	row := s.db.QueryRow(`
		SELECT sound_notifications, high_quality_audio, noise_cancellation,
		       notifications_enabled, snooze_min, poll_sec
		FROM settings WHERE id = 1`)

	var st Settings
	err := row.Scan(&st.SoundNotifications, &st.HighQualityAudio, &st.NoiseCancellation,
		&st.NotificationsEnabled, &st.SnoozeMin, &st.PollSec)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) SaveSettings(st Settings) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (id, sound_notifications, high_quality_audio, noise_cancellation,
		                      notifications_enabled, snooze_min, poll_sec)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sound_notifications = excluded.sound_notifications,
			high_quality_audio = excluded.high_quality_audio,
			noise_cancellation = excluded.noise_cancellation,
			notifications_enabled = excluded.notifications_enabled,
			snooze_min = excluded.snooze_min,
			poll_sec = excluded.poll_sec`,
		st.SoundNotifications, st.HighQualityAudio, st.NoiseCancellation,
		st.NotificationsEnabled, st.SnoozeMin, st.PollSec)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

const alarmColumns = `id, time, date, label, is_enabled, repeat_days, severity, created_at,
	last_triggered, recording_id, recording_audio, recording_duration, recording_created_at`

func scanAlarm(row interface{ Scan(...any) error }) (models.Alarm, error) {
	var a models.Alarm
	var repeatDays string
	var lastTriggered sql.NullTime
	var recID sql.NullString
	var recAudio []byte
	var recDuration sql.NullFloat64
	var recCreatedAt sql.NullTime

	err := row.Scan(&a.ID, &a.Time, &a.Date, &a.Label, &a.IsEnabled, &repeatDays, &a.Severity,
		&a.CreatedAt, &lastTriggered, &recID, &recAudio, &recDuration, &recCreatedAt)
	if err != nil {
		return models.Alarm{}, err
	}

	if repeatDays != "" {
		var weekdays []int
		if err := json.Unmarshal([]byte(repeatDays), &weekdays); err == nil {
			for _, w := range weekdays {
				a.RepeatDays = append(a.RepeatDays, time.Weekday(w))
			}
		}
	}
	if lastTriggered.Valid {
		t := lastTriggered.Time
		a.LastTriggered = &t
	}
	if recID.Valid {
		a.VoiceRecording = &models.VoiceRecording{
			ID:          recID.String,
			Audio:       recAudio,
			DurationSec: recDuration.Float64,
			CreatedAt:   recCreatedAt.Time,
		}
	}
	return a, nil
}

func marshalWeekdays(days []time.Weekday) string {
	ints := make([]int, 0, len(days))
	for _, d := range days {
		ints = append(ints, int(d))
	}
	data, _ := json.Marshal(ints)
	return string(data)
}

func alarmWriteArgs(a models.Alarm) []any {
	var lastTriggered any
	if a.LastTriggered != nil {
		lastTriggered = *a.LastTriggered
	}
	var recID, recAudio, recDuration, recCreatedAt any
	if a.VoiceRecording != nil {
		recID = a.VoiceRecording.ID
		recAudio = a.VoiceRecording.Audio
		recDuration = a.VoiceRecording.DurationSec
		recCreatedAt = a.VoiceRecording.CreatedAt
	}
	return []any{
		a.ID, a.Time, a.Date, a.Label, a.IsEnabled, marshalWeekdays(a.RepeatDays),
		string(a.Severity), a.CreatedAt, lastTriggered, recID, recAudio, recDuration, recCreatedAt,
	}
}

func (s *SQLiteStore) AddAlarm(alarm models.Alarm) (models.Alarm, error) {
	if alarm.ID == "" {
		alarm.ID = uuid.New().String()
	}
	if alarm.CreatedAt.IsZero() {
		alarm.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO alarms (`+alarmColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alarmWriteArgs(alarm)...)
	if err != nil {
		return models.Alarm{}, fmt.Errorf("failed to insert alarm: %w", err)
	}
	return alarm, nil
}

func (s *SQLiteStore) GetAlarm(id string) (models.Alarm, error) {
	row := s.db.QueryRow(`SELECT `+alarmColumns+` FROM alarms WHERE id = ?`, id)
	alarm, err := scanAlarm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Alarm{}, fmt.Errorf("alarm %s: %w", id, ErrNotFound)
		}
		return models.Alarm{}, fmt.Errorf("failed to read alarm: %w", err)
	}
	return alarm, nil
}

func (s *SQLiteStore) GetAllAlarms() ([]models.Alarm, error) {
	rows, err := s.db.Query(`SELECT ` + alarmColumns + ` FROM alarms ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}
	defer rows.Close()

	var alarms []models.Alarm
	for rows.Next() {
		alarm, err := scanAlarm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alarm: %w", err)
		}
		alarms = append(alarms, alarm)
	}
	return alarms, rows.Err()
}

func (s *SQLiteStore) UpdateAlarm(alarm models.Alarm) error {
	args := alarmWriteArgs(alarm)
	// Shift id to the WHERE position
	args = append(args[1:], alarm.ID)
	res, err := s.db.Exec(`
		UPDATE alarms SET time = ?, date = ?, label = ?, is_enabled = ?, repeat_days = ?,
			severity = ?, created_at = ?, last_triggered = ?, recording_id = ?,
			recording_audio = ?, recording_duration = ?, recording_created_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update alarm: %w", err)
	}
	return requireRow(res, "alarm", alarm.ID)
}

func (s *SQLiteStore) DeleteAlarm(id string) error {
	res, err := s.db.Exec(`DELETE FROM alarms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
	}
	return requireRow(res, "alarm", id)
}

func (s *SQLiteStore) ToggleAlarm(id string) (models.Alarm, error) {
	res, err := s.db.Exec(`UPDATE alarms SET is_enabled = NOT is_enabled WHERE id = ?`, id)
	if err != nil {
		return models.Alarm{}, fmt.Errorf("failed to toggle alarm: %w", err)
	}
	if err := requireRow(res, "alarm", id); err != nil {
		return models.Alarm{}, err
	}
	return s.GetAlarm(id)
}

func (s *SQLiteStore) DuplicateAlarm(id string) (models.Alarm, error) {
	alarm, err := s.GetAlarm(id)
	if err != nil {
		return models.Alarm{}, err
	}

	dup := alarm
	dup.ID = uuid.New().String()
	dup.CreatedAt = time.Now()
	dup.IsEnabled = false
	dup.LastTriggered = nil
	return s.AddAlarm(dup)
}

func (s *SQLiteStore) AddSpace(space models.Space) (models.Space, error) {
	now := time.Now()
	if space.ID == "" {
		space.ID = uuid.New().String()
	}
	if space.CreatedAt.IsZero() {
		space.CreatedAt = now
	}
	space.UpdatedAt = now

	_, err := s.db.Exec(`INSERT INTO spaces (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		space.ID, space.Name, space.CreatedAt, space.UpdatedAt)
	if err != nil {
		return models.Space{}, fmt.Errorf("failed to insert space: %w", err)
	}
	return space, nil
}

func (s *SQLiteStore) GetSpace(id string) (models.Space, error) {
	row := s.db.QueryRow(`SELECT id, name, created_at, updated_at FROM spaces WHERE id = ?`, id)
	var sp models.Space
	if err := row.Scan(&sp.ID, &sp.Name, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Space{}, fmt.Errorf("space %s: %w", id, ErrNotFound)
		}
		return models.Space{}, fmt.Errorf("failed to read space: %w", err)
	}
	return sp, nil
}

func (s *SQLiteStore) GetAllSpaces() ([]models.Space, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at, updated_at FROM spaces ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	defer rows.Close()

	var spaces []models.Space
	for rows.Next() {
		var sp models.Space
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan space: %w", err)
		}
		spaces = append(spaces, sp)
	}
	return spaces, rows.Err()
}

func (s *SQLiteStore) RenameSpace(id, name string) error {
	res, err := s.db.Exec(`UPDATE spaces SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to rename space: %w", err)
	}
	return requireRow(res, "space", id)
}

func (s *SQLiteStore) DeleteSpace(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM spaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}
	if err := requireRow(res, "space", id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE space_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete space notes: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) AddNote(note models.Note) (models.Note, error) {
	if _, err := s.GetSpace(note.SpaceID); err != nil {
		return models.Note{}, err
	}

	now := time.Now()
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	note.UpdatedAt = now

	var recID, recAudio, recDuration, recCreatedAt any
	if note.Recording != nil {
		recID = note.Recording.ID
		recAudio = note.Recording.Audio
		recDuration = note.Recording.DurationSec
		recCreatedAt = note.Recording.CreatedAt
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO notes (id, space_id, title, content, recording_id, recording_audio,
		                   recording_duration, recording_created_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.SpaceID, note.Title, note.Content, recID, recAudio, recDuration,
		recCreatedAt, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to insert note: %w", err)
	}
	if _, err := tx.Exec(`UPDATE spaces SET updated_at = ? WHERE id = ?`, now, note.SpaceID); err != nil {
		return models.Note{}, fmt.Errorf("failed to touch space: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Note{}, err
	}
	return note, nil
}

func scanNote(row interface{ Scan(...any) error }) (models.Note, error) {
	var n models.Note
	var recID sql.NullString
	var recAudio []byte
	var recDuration sql.NullFloat64
	var recCreatedAt sql.NullTime

	err := row.Scan(&n.ID, &n.SpaceID, &n.Title, &n.Content, &recID, &recAudio,
		&recDuration, &recCreatedAt, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return models.Note{}, err
	}
	if recID.Valid {
		n.Recording = &models.VoiceRecording{
			ID:          recID.String,
			Audio:       recAudio,
			DurationSec: recDuration.Float64,
			CreatedAt:   recCreatedAt.Time,
		}
	}
	return n, nil
}

const noteColumns = `id, space_id, title, content, recording_id, recording_audio,
	recording_duration, recording_created_at, created_at, updated_at`

func (s *SQLiteStore) GetNote(id string) (models.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return models.Note{}, fmt.Errorf("failed to read note: %w", err)
	}
	return note, nil
}

func (s *SQLiteStore) GetNotesBySpace(spaceID string) ([]models.Note, error) {
	rows, err := s.db.Query(`SELECT `+noteColumns+` FROM notes WHERE space_id = ? ORDER BY created_at, id`, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) UpdateNote(note models.Note) error {
	var recID, recAudio, recDuration, recCreatedAt any
	if note.Recording != nil {
		recID = note.Recording.ID
		recAudio = note.Recording.Audio
		recDuration = note.Recording.DurationSec
		recCreatedAt = note.Recording.CreatedAt
	}

	res, err := s.db.Exec(`
		UPDATE notes SET title = ?, content = ?, recording_id = ?, recording_audio = ?,
			recording_duration = ?, recording_created_at = ?, updated_at = ?
		WHERE id = ?`,
		note.Title, note.Content, recID, recAudio, recDuration, recCreatedAt,
		time.Now(), note.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return requireRow(res, "note", note.ID)
}

func (s *SQLiteStore) DeleteNote(id string) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return requireRow(res, "note", id)
}

func (s *SQLiteStore) AddMessage(msg models.Message) (models.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`INSERT INTO messages (id, text, is_user, created_at) VALUES (?, ?, ?, ?)`,
		msg.ID, msg.Text, msg.IsUser, msg.CreatedAt)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

func (s *SQLiteStore) GetMessages() ([]models.Message, error) {
	rows, err := s.db.Query(`SELECT id, text, is_user, created_at FROM messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.IsUser, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *SQLiteStore) ClearMessages() error {
	if _, err := s.db.Exec(`DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
