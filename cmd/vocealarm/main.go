package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/vocealarm/internal/cli"
	"github.com/julianstephens/vocealarm/internal/constants"
	"github.com/julianstephens/vocealarm/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store file path." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Enable debug logging."`

	Init  cli.InitCmd `cmd:"" help:"Initialize vocealarm storage."`
	Run   cli.RunCmd  `cmd:"" help:"Run the alarm daemon."`
	Tui   cli.TuiCmd  `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Alarm struct {
		Add       cli.AlarmAddCmd       `cmd:"" help:"Add a new alarm."`
		List      cli.AlarmListCmd      `cmd:"" help:"List all alarms."`
		Edit      cli.AlarmEditCmd      `cmd:"" help:"Edit an existing alarm."`
		Delete    cli.AlarmDeleteCmd    `cmd:"" help:"Delete an alarm."`
		Toggle    cli.AlarmToggleCmd    `cmd:"" help:"Enable or disable an alarm."`
		Duplicate cli.AlarmDuplicateCmd `cmd:"" help:"Duplicate an alarm."`
	} `cmd:"" help:"Manage alarms."`
	Record cli.RecordCmd `cmd:"" help:"Attach a voice message to an alarm."`
	Space  struct {
		Add    cli.SpaceAddCmd    `cmd:"" help:"Create a note space."`
		List   cli.SpaceListCmd   `cmd:"" help:"List note spaces."`
		Rename cli.SpaceRenameCmd `cmd:"" help:"Rename a note space."`
		Delete cli.SpaceDeleteCmd `cmd:"" help:"Delete a note space and its notes."`
	} `cmd:"" help:"Manage note spaces."`
	Note struct {
		Add    cli.NoteAddCmd    `cmd:"" help:"Add a note to a space."`
		List   cli.NoteListCmd   `cmd:"" help:"List notes in a space."`
		Delete cli.NoteDeleteCmd `cmd:"" help:"Delete a note."`
	} `cmd:"" help:"Manage notes."`
	Chat   cli.ChatCmd   `cmd:"" help:"Talk to the assistant."`
	Export cli.ExportCmd `cmd:"" help:"Export alarms as an iCalendar feed."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup of the store."`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore the store from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Validate cli.ValidateCmd `cmd:"" help:"Check the alarm collection for conflicts."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health diagnostics."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Voice alarm clock with spaces, notes and a chat assistant"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	// Determine storage type based on extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{
		Store: store,
		Debug: CLI.Debug,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
