package cli

import "fmt"

type AlarmDeleteCmd struct {
	ID string `arg:"" help:"Alarm ID."`
}

func (c *AlarmDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	if err := ctx.Store.DeleteAlarm(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted alarm %s\n", c.ID)
	return nil
}

type AlarmToggleCmd struct {
	ID string `arg:"" help:"Alarm ID."`
}

func (c *AlarmToggleCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	alarm, err := ctx.Store.ToggleAlarm(c.ID)
	if err != nil {
		return err
	}

	state := "enabled"
	if !alarm.IsEnabled {
		state = "disabled"
	}
	fmt.Printf("Alarm %s is now %s\n", alarm.ID, state)
	return nil
}

type AlarmDuplicateCmd struct {
	ID string `arg:"" help:"Alarm ID."`
}

func (c *AlarmDuplicateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	copy, err := ctx.Store.DuplicateAlarm(c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Duplicated alarm (new ID: %s, disabled)\n", copy.ID)
	return nil
}
