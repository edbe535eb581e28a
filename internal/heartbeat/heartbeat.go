// Package heartbeat reports process liveness on a timer independent of the
// harvest loop, so a slow harvest never silences the status signal.
package heartbeat

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"jobherald/internal/scheduler"
)

// StatusSender posts a status line to a chat. Optional.
type StatusSender interface {
	SendStatus(chatID int64, text string) error
}

type Heartbeat struct {
	cron      *cron.Cron
	scheduler *scheduler.Scheduler
	sender    StatusSender // nil disables chat status lines
	chatID    int64
	startedAt time.Time
	logger    *slog.Logger
}

func New(sched *scheduler.Scheduler, sender StatusSender, chatID int64, logger *slog.Logger) *Heartbeat {
	return &Heartbeat{
		cron:      cron.New(),
		scheduler: sched,
		sender:    sender,
		chatID:    chatID,
		logger:    logger,
	}
}

// Start registers the 1-minute beat and starts the timer.
func (h *Heartbeat) Start() error {
	h.startedAt = time.Now()

	if _, err := h.cron.AddFunc("@every 1m", h.beat); err != nil {
		return fmt.Errorf("register heartbeat: %w", err)
	}

	h.cron.Start()
	h.logger.Info("heartbeat started")
	return nil
}

func (h *Heartbeat) Stop() {
	h.cron.Stop()
	h.logger.Info("heartbeat stopped")
}

func (h *Heartbeat) beat() {
	snap := h.scheduler.Snapshot()
	uptime := time.Since(h.startedAt).Round(time.Second)

	h.logger.Info("heartbeat",
		"uptime", uptime,
		"cycles", snap.Cycles,
		"published", snap.Published,
		"failures", snap.Failures,
	)

	if h.sender != nil && h.chatID != 0 {
		text := fmt.Sprintf("Playing with jobs! 🎉 up %s, %d cycles, %d postings announced",
			uptime, snap.Cycles, snap.Published)
		if err := h.sender.SendStatus(h.chatID, text); err != nil {
			h.logger.Warn("status send failed", "error", err)
		}
	}
}
