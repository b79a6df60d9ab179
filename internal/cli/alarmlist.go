package cli

import "fmt"

type AlarmListCmd struct {
	EnabledOnly bool `help:"Show only enabled alarms."`
}

func (c *AlarmListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	alarms, err := ctx.Store.GetAllAlarms()
	if err != nil {
		return err
	}
	if len(alarms) == 0 {
		fmt.Println("No alarms found")
		return nil
	}

	fmt.Println("Alarms:")
	for _, alarm := range alarms {
		if c.EnabledOnly && !alarm.IsEnabled {
			continue
		}
		fmt.Println(formatAlarmLine(alarm))
		fmt.Printf("      ID: %s\n", alarm.ID)
	}
	return nil
}
