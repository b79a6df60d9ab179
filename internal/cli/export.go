package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/vocealarm/internal/export"
)

type ExportCmd struct {
	Output string `short:"o" help:"Write to a file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	alarms, err := ctx.Store.GetAllAlarms()
	if err != nil {
		return err
	}

	data, err := export.ICal(alarms)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(c.Output, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}
	fmt.Printf("Exported %d alarms to %s\n", len(alarms), c.Output)
	return nil
}
