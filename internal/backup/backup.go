package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/creatorstation/tracker/internal/codec"
	"github.com/creatorstation/tracker/internal/models"
)

// DefaultSchedule runs a backup every 6 hours.
const DefaultSchedule = "0 */6 * * *"

// Source provides the collection to back up.
type Source interface {
	Records() []models.Influencer
}

// Scheduler writes export documents of a Source into a directory.
type Scheduler struct {
	src  Source
	dir  string
	log  *zap.Logger
	now  func() time.Time
	cron *cron.Cron
}

func NewScheduler(src Source, dir string, l *zap.Logger) *Scheduler {
	return &Scheduler{
		src: src,
		dir: dir,
		log: l.Named("backup"),
		now: time.Now,
	}
}

// Start schedules Run. It does nothing when no directory is configured.
func (s *Scheduler) Start(schedule string) error {
	if s.dir == "" {
		s.log.Info("Backup directory not configured, scheduled backups disabled")
		return nil
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Run(); err != nil {
			s.log.Error("Scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add backup cron job: %w", err)
	}

	s.cron.Start()
	s.log.Info("Backup cron job scheduled", zap.String("schedule", schedule), zap.String("dir", s.dir))
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Run writes one backup now and returns its path. A backup taken on the same
// day as an earlier one replaces it.
func (s *Scheduler) Run() (string, error) {
	if s.dir == "" {
		return "", fmt.Errorf("backup directory not configured")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	records := s.src.Records()
	data, err := codec.Marshal(records)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, codec.FileName(s.now()))
	tmp, err := os.CreateTemp(s.dir, ".backup-*.json")
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("error writing to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("error moving backup into place: %w", err)
	}

	s.log.Info("Backup written", zap.String("path", path), zap.Int("influencers", len(records)))
	return path, nil
}

// MountController exposes an on-demand backup trigger.
func (s *Scheduler) MountController(router fiber.Router) {
	router.Post("/backup/run", func(c *fiber.Ctx) error {
		path, err := s.Run()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "Backup written",
			"path":    path,
		})
	})
}
