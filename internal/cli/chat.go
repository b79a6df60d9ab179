package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/vocealarm/internal/chat"
	"github.com/julianstephens/vocealarm/internal/models"
)

// inboxSpace is where chat-created notes land.
const inboxSpace = "Inbox"

type ChatCmd struct {
	Message []string `arg:"" optional:"" help:"Message for the assistant."`
	History bool     `help:"Show the stored conversation."`
	Clear   bool     `help:"Clear the stored conversation."`
}

func (c *ChatCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	bot := chat.NewBot(ctx.Store)

	if c.Clear {
		if err := bot.Clear(); err != nil {
			return err
		}
		fmt.Println("Conversation cleared.")
		return nil
	}

	if c.History {
		msgs, err := bot.History()
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Println("No conversation yet.")
			return nil
		}
		for _, msg := range msgs {
			who := "bot"
			if msg.IsUser {
				who = "you"
			}
			fmt.Printf("  %s  %s: %s\n", msg.CreatedAt.Format("15:04"), who, msg.Text)
		}
		return nil
	}

	if len(c.Message) == 0 {
		return fmt.Errorf("nothing to say: pass a message, --history, or --clear")
	}

	reply, action, err := bot.Handle(strings.Join(c.Message, " "))
	if err != nil {
		return err
	}
	fmt.Println(reply)

	switch act := action.(type) {
	case chat.CreateAlarm:
		alarm, err := ctx.Store.AddAlarm(models.Alarm{
			Time:      act.Time,
			Date:      defaultAlarmDate(act.Time, time.Now()),
			Label:     act.Label,
			IsEnabled: true,
			Severity:  models.SeverityMedium,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created alarm for %s %s (ID: %s)\n", alarm.Date, alarm.Time, alarm.ID)
	case chat.CreateNote:
		note, err := c.addInboxNote(ctx, act.Text)
		if err != nil {
			return err
		}
		fmt.Printf("Filed note in %s (ID: %s)\n", inboxSpace, note.ID)
	case chat.Navigate:
		fmt.Printf("(try: vocealarm %s)\n", navigateHint(act.Target))
	case chat.None:
		// reply already printed
	default:
		return fmt.Errorf("unhandled assistant action %T", act)
	}
	return nil
}

// addInboxNote files a note in the inbox space, creating it on first use.
func (c *ChatCmd) addInboxNote(ctx *Context, text string) (models.Note, error) {
	spaces, err := ctx.Store.GetAllSpaces()
	if err != nil {
		return models.Note{}, err
	}

	var inbox *models.Space
	for i := range spaces {
		if spaces[i].Name == inboxSpace {
			inbox = &spaces[i]
			break
		}
	}
	if inbox == nil {
		created, err := ctx.Store.AddSpace(models.Space{Name: inboxSpace})
		if err != nil {
			return models.Note{}, err
		}
		inbox = &created
	}

	title := text
	if len(title) > 40 {
		title = title[:40]
	}
	return ctx.Store.AddNote(models.Note{SpaceID: inbox.ID, Title: title, Content: text})
}

func navigateHint(target string) string {
	switch target {
	case "alarms":
		return "alarm list"
	case "notes", "spaces":
		return "space list"
	case "settings":
		return "settings"
	case "record":
		return "record <alarm-id> --stdin"
	default:
		return target
	}
}
