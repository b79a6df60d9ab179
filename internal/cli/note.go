package cli

import (
	"fmt"

	"github.com/julianstephens/vocealarm/internal/models"
)

type NoteAddCmd struct {
	SpaceID string `arg:"" help:"Space ID the note belongs to."`
	Title   string `arg:"" help:"Note title."`
	Content string `short:"c" help:"Note body."`
}

func (c *NoteAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	note, err := ctx.Store.AddNote(models.Note{
		SpaceID: c.SpaceID,
		Title:   c.Title,
		Content: c.Content,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added note %q (ID: %s)\n", note.Title, note.ID)
	return nil
}

type NoteListCmd struct {
	SpaceID string `arg:"" help:"Space ID."`
}

func (c *NoteListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	space, err := ctx.Store.GetSpace(c.SpaceID)
	if err != nil {
		return err
	}
	notes, err := ctx.Store.GetNotesBySpace(c.SpaceID)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Printf("No notes in %q\n", space.Name)
		return nil
	}

	fmt.Printf("Notes in %q:\n", space.Name)
	for _, note := range notes {
		line := fmt.Sprintf("  %s", note.Title)
		if note.Recording != nil {
			line += fmt.Sprintf("  voice %.1fs", note.Recording.DurationSec)
		}
		fmt.Println(line)
		fmt.Printf("      ID: %s\n", note.ID)
	}
	return nil
}

type NoteDeleteCmd struct {
	ID string `arg:"" help:"Note ID."`
}

func (c *NoteDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	if err := ctx.Store.DeleteNote(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted note %s\n", c.ID)
	return nil
}
