package roster

import (
	"fmt"
	"strings"
)

// Messages holds the user-facing texts. Defaults follow the original
// bot's register (Russian, light emoji); individual texts can be
// overridden from configuration.
type Messages struct {
	GreetingText   string
	ConfirmPlaying string
	ConfirmNot     string
	ConfirmMaybe   string
	MilestoneText  string // fmt template, one %d verb for the threshold
	ResetText      string
	EmptyRoster    string
}

// DefaultMessages returns the built-in message set.
func DefaultMessages() Messages {
	return Messages{
		GreetingText:   "Привет! Я бот для записи на футбол.\nОтметь свой статус: играю, не играю или под вопросом.\nКоманда /stats покажет, кто записался.",
		ConfirmPlaying: "Отлично, ты в игре! ⚽",
		ConfirmNot:     "Жаль! Записал, что тебя не будет.",
		ConfirmMaybe:   "Ок, записал как «под вопросом».",
		MilestoneText:  "⚽ Отличные новости — нас уже %d! Игра состоится!",
		ResetText:      "Список очищен!",
		EmptyRoster:    "Пока никого нет 😢",
	}
}

// Confirmation returns the per-participant reply for a status change.
func (m Messages) Confirmation(s Status) string {
	switch s {
	case StatusPlaying:
		return m.ConfirmPlaying
	case StatusNotPlaying:
		return m.ConfirmNot
	case StatusMaybe:
		return m.ConfirmMaybe
	}
	return ""
}

// Greeting returns the first-contact text.
func (m Messages) Greeting() string { return m.GreetingText }

// Milestone renders the broadcast text for a capacity milestone.
func (m Messages) Milestone(threshold int) string {
	return fmt.Sprintf(m.MilestoneText, threshold)
}

// ResetDone returns the reset confirmation.
func (m Messages) ResetDone() string { return m.ResetText }

// StatsReport renders the full report: counts plus the numbered list of
// confirmed players.
func (m Messages) StatsReport(r StatsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Статистика:*\n")
	fmt.Fprintf(&b, "Играют: %d\n", r.Playing)
	fmt.Fprintf(&b, "Не играют: %d\n", r.NotPlaying)
	fmt.Fprintf(&b, "Под вопросом: %d\n", r.Maybe)
	fmt.Fprintf(&b, "Игнорируют: %d\n", r.Ignored)
	b.WriteString("\n")
	if len(r.Players) == 0 {
		b.WriteString(m.EmptyRoster)
		return b.String()
	}
	fmt.Fprintf(&b, "Игроки (%d):\n", r.Playing)
	for i, p := range r.Players {
		fmt.Fprintf(&b, "%d. %s\n", i+1, displayName(p))
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayName(p Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("id%d", p.ID)
}
