package cli

import (
	"fmt"

	"github.com/julianstephens/vocealarm/internal/models"
)

type SpaceAddCmd struct {
	Name string `arg:"" help:"Space name."`
}

func (c *SpaceAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	space, err := ctx.Store.AddSpace(models.Space{Name: c.Name})
	if err != nil {
		return err
	}
	fmt.Printf("Added space %q (ID: %s)\n", space.Name, space.ID)
	return nil
}

type SpaceListCmd struct{}

func (c *SpaceListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	spaces, err := ctx.Store.GetAllSpaces()
	if err != nil {
		return err
	}
	if len(spaces) == 0 {
		fmt.Println("No spaces found")
		return nil
	}

	fmt.Println("Spaces:")
	for _, space := range spaces {
		notes, err := ctx.Store.GetNotesBySpace(space.ID)
		if err != nil {
			return err
		}
		fmt.Printf("  %s (%d notes)\n      ID: %s\n", space.Name, len(notes), space.ID)
	}
	return nil
}

type SpaceRenameCmd struct {
	ID   string `arg:"" help:"Space ID."`
	Name string `arg:"" help:"New name."`
}

func (c *SpaceRenameCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	if err := ctx.Store.RenameSpace(c.ID, c.Name); err != nil {
		return err
	}
	fmt.Printf("Renamed space %s to %q\n", c.ID, c.Name)
	return nil
}

type SpaceDeleteCmd struct {
	ID string `arg:"" help:"Space ID."`
}

func (c *SpaceDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	if err := ctx.Store.DeleteSpace(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted space %s and its notes\n", c.ID)
	return nil
}
