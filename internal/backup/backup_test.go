package backup

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/creatorstation/tracker/internal/codec"
	"github.com/creatorstation/tracker/internal/models"
)

type staticSource []models.Influencer

func (s staticSource) Records() []models.Influencer { return s }

func sample() staticSource {
	return staticSource{
		{ID: "a", Username: "alice", ProfileLink: "https://x.test/alice", Platform: models.PlatformTikTok,
			ViewsMedian: 10, TotalViews: 50, Status: models.StatusPaid},
		{ID: "b", Username: "bob", ProfileLink: "https://x.test/bob", Platform: models.PlatformInstagram,
			ViewsMedian: 2, TotalViews: 10, Status: models.StatusPosted},
	}
}

func TestScheduler_Run(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := NewScheduler(sample(), dir, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC) }

	path, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "influencers-2024-06-02.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := codec.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, []models.Influencer(sample()), got)

	// Same day overwrites, and no temp files are left behind.
	_, err = s.Run()
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestScheduler_NoDir(t *testing.T) {
	s := NewScheduler(sample(), "", zap.NewNop())

	_, err := s.Run()
	assert.Error(t, err)

	require.NoError(t, s.Start(DefaultSchedule))
	assert.Nil(t, s.cron)
	s.Stop()
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(sample(), t.TempDir(), zap.NewNop())
	assert.Error(t, s.Start("every now and then"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(sample(), t.TempDir(), zap.NewNop())
	require.NoError(t, s.Start(""))
	require.NotNil(t, s.cron)
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestScheduler_MountController(t *testing.T) {
	app := fiber.New()

	ok := NewScheduler(sample(), t.TempDir(), zap.NewNop())
	ok.MountController(app.Group("/ok"))
	disabled := NewScheduler(sample(), "", zap.NewNop())
	disabled.MountController(app.Group("/disabled"))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/ok/backup/run", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/disabled/backup/run", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
