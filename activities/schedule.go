package activities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSlots - утро, день и вечер по будням
const DefaultSlots = "10:00,14:00,18:00"

// Trigger регистрирует задачу по cron расписанию. *cron.Cron его реализует
type Trigger interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
}

var _ Trigger = (*cron.Cron)(nil)

// Slot - время рассылки в часовом поясе планировщика
type Slot struct {
	Hour   int
	Minute int
}

// Spec возвращает cron выражение для слота по будням
func (s Slot) Spec() string {
	return fmt.Sprintf("%d %d * * 1-5", s.Minute, s.Hour)
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// ParseSlots разбирает список вида "10:00,14:00,18:00"
func ParseSlots(raw string) ([]Slot, error) {
	var slots []Slot
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		hh, mm, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("slot %q: expected HH:MM", part)
		}
		hour, err := strconv.Atoi(hh)
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("slot %q: invalid hour", part)
		}
		minute, err := strconv.Atoi(mm)
		if err != nil || minute < 0 || minute > 59 {
			return nil, fmt.Errorf("slot %q: invalid minute", part)
		}
		slots = append(slots, Slot{Hour: hour, Minute: minute})
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("no quiz slots in %q", raw)
	}
	return slots, nil
}

// Schedule ставит job на каждый слот
func Schedule(t Trigger, slots []Slot, job func()) error {
	for _, slot := range slots {
		if _, err := t.AddFunc(slot.Spec(), job); err != nil {
			return fmt.Errorf("schedule slot %s: %w", slot, err)
		}
		log.Info().Str("slot", slot.String()).Msg("Quiz broadcast scheduled")
	}
	return nil
}
