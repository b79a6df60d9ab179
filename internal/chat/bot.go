package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/julianstephens/vocealarm/internal/models"
	"github.com/julianstephens/vocealarm/internal/storage"
)

// Action is what the assistant decided the user wants done. Callers
// switch on the concrete type; exactly one variant is returned per
// message.
type Action interface {
	isAction()
}

// CreateAlarm asks the caller to create an alarm at Time ("HH:MM").
type CreateAlarm struct {
	Time  string
	Label string
}

// CreateNote asks the caller to file a quick note.
type CreateNote struct {
	Text string
}

// Navigate asks the caller to open a named screen.
type Navigate struct {
	Target string
}

// None means the message required no action beyond the reply.
type None struct{}

func (CreateAlarm) isAction() {}
func (CreateNote) isAction()  {}
func (Navigate) isAction()    {}
func (None) isAction()        {}

var (
	alarmRe = regexp.MustCompile(`(?i)\b(?:alarm|wake me(?: up)?)\b.*?\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	noteRe  = regexp.MustCompile(`(?i)^(?:note|remember|jot down)[:,]?\s+(.+)$`)
)

var navTargets = []string{"alarms", "notes", "spaces", "settings", "record"}

// Bot is the rule-based chat assistant. It matches a fixed set of
// keyword and regex rules against user text and persists the exchange
// through the storage provider.
type Bot struct {
	store storage.Provider
}

func NewBot(store storage.Provider) *Bot {
	return &Bot{store: store}
}

// Handle records the user's message, applies the rules, records the
// reply, and returns it together with the decided action.
func (b *Bot) Handle(text string) (string, Action, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", None{}, fmt.Errorf("empty message")
	}

	if _, err := b.store.AddMessage(models.Message{Text: text, IsUser: true}); err != nil {
		return "", None{}, fmt.Errorf("failed to record message: %w", err)
	}

	reply, action := respond(text)

	if _, err := b.store.AddMessage(models.Message{Text: reply, IsUser: false}); err != nil {
		return "", None{}, fmt.Errorf("failed to record reply: %w", err)
	}
	return reply, action, nil
}

// History returns the stored conversation, oldest first.
func (b *Bot) History() ([]models.Message, error) {
	return b.store.GetMessages()
}

// Clear wipes the stored conversation.
func (b *Bot) Clear() error {
	return b.store.ClearMessages()
}

// respond applies the rules in priority order: alarm creation, note
// creation, navigation, fallback.
func respond(text string) (string, Action) {
	if m := alarmRe.FindStringSubmatch(text); m != nil {
		hhmm, ok := normalizeTime(m[1], m[2], m[3])
		if ok {
			return fmt.Sprintf("Setting an alarm for %s.", hhmm), CreateAlarm{Time: hhmm, Label: alarmLabel(text, hhmm)}
		}
		return "I couldn't make sense of that time. Try something like \"set an alarm for 7:30 am\".", None{}
	}

	if m := noteRe.FindStringSubmatch(text); m != nil {
		body := strings.TrimSpace(m[1])
		return "Noted.", CreateNote{Text: body}
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "open") || strings.Contains(lower, "show") || strings.Contains(lower, "go to") {
		for _, target := range navTargets {
			if strings.Contains(lower, target) {
				return fmt.Sprintf("Opening %s.", target), Navigate{Target: target}
			}
		}
	}

	return "I can set alarms (\"wake me at 7:30\"), take notes (\"note: buy milk\"), or open a screen (\"show alarms\").", None{}
}

// normalizeTime converts matched hour/minute/meridiem parts to "HH:MM".
func normalizeTime(hourStr, minStr, meridiem string) (string, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour > 23 {
		return "", false
	}

	minute := 0
	if minStr != "" {
		minute, err = strconv.Atoi(minStr)
		if err != nil || minute > 59 {
			return "", false
		}
	}

	switch strings.ToLower(meridiem) {
	case "am":
		if hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// alarmLabel extracts a display label from the tail of an alarm request
// ("wake me at 7 for the gym" -> "the gym").
func alarmLabel(text, hhmm string) string {
	lower := strings.ToLower(text)
	if idx := strings.LastIndex(lower, " for "); idx >= 0 {
		tail := strings.TrimSpace(text[idx+len(" for "):])
		// A bare time after "for" is the schedule, not a label
		if tail != "" && !strings.ContainsAny(tail[:1], "0123456789") {
			return tail
		}
	}
	return "Alarm " + hhmm
}
