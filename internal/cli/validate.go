package cli

import (
	"fmt"

	"github.com/julianstephens/vocealarm/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	defer ctx.Store.Close()

	alarms, err := ctx.Store.GetAllAlarms()
	if err != nil {
		return fmt.Errorf("failed to load alarms: %w", err)
	}

	fmt.Printf("Validating %d alarms...\n\n", len(alarms))
	result := validation.New().ValidateAlarms(alarms)
	fmt.Println(result.FormatReport())
	return nil
}
