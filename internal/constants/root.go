package constants

const (
	AppName           = "vocealarm"
	DefaultConfigPath = "~/.config/vocealarm/vocealarm.db"
	Version           = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "vocealarm-"
)
