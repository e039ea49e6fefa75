package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorstation/tracker/internal/models"
	"github.com/creatorstation/tracker/internal/tracker"
)

func TestFormatViews(t *testing.T) {
	tests := map[float64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		1234567:    "1,234,567",
		12500.5:    "12,500.5",
		-4200:      "-4,200",
		100000000:  "100,000,000",
		1000000.25: "1,000,000.25",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatViews(in), "formatViews(%v)", in)
	}
}

func TestSetSlots(t *testing.T) {
	var slots [models.VideoSlots]string
	require.NoError(t, setSlots(&slots, []string{"1=https://x.test/a", "4= https://x.test/d ", "1=https://x.test/a2"}))
	assert.Equal(t, [models.VideoSlots]string{"https://x.test/a2", "", "", "https://x.test/d"}, slots)

	require.NoError(t, setSlots(&slots, []string{"4="}))
	assert.Equal(t, "", slots[3], "empty value clears the slot")

	for _, bad := range []string{"https://x.test", "0=a", "5=a", "x=a"} {
		assert.Error(t, setSlots(&slots, []string{bad}), bad)
	}
}

func newDraftCmd(args ...string) (*cobra.Command, *draftFlags) {
	var f draftFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	_ = cmd.Flags().Parse(args)
	return cmd, &f
}

func TestDraftFrom_Add(t *testing.T) {
	cmd, f := newDraftCmd("-u", "alice", "-l", "https://x.test/alice", "-m", "1500", "--video", "2=https://x.test/v2")

	d, err := f.draftFrom(cmd, models.Draft{})
	require.NoError(t, err)
	assert.Equal(t, models.Draft{
		Username:    "alice",
		ProfileLink: "https://x.test/alice",
		Platform:    models.PlatformInstagram,
		ViewsMedian: "1500",
		VideoLinks:  [models.VideoSlots]string{"", "https://x.test/v2", "", ""},
		Status:      models.StatusPosted,
	}, d)
}

func TestDraftFrom_UpdateKeepsUnsetFields(t *testing.T) {
	current := models.Influencer{
		Username:      "bob",
		ProfileLink:   "https://x.test/bob",
		Platform:      models.PlatformTikTok,
		ViewsMedian:   300,
		ViewsNow:      12.5,
		VideoLinks:    [models.VideoSlots]string{"https://x.test/1", "", "", ""},
		PostedOnDates: [models.VideoSlots]string{"2024-05-01", "", "", ""},
		Status:        models.StatusApprovalNeeded,
	}

	cmd, f := newDraftCmd("--status", "Paid", "--posted", "2=2024-05-08")
	d, err := f.draftFrom(cmd, draftOf(current))
	require.NoError(t, err)

	assert.Equal(t, "bob", d.Username)
	assert.Equal(t, models.PlatformTikTok, d.Platform)
	assert.Equal(t, models.NumberInput("300"), d.ViewsMedian)
	assert.Equal(t, models.NumberInput("12.5"), d.ViewsNow)
	assert.Equal(t, models.StatusPaid, d.Status)
	assert.Equal(t, current.VideoLinks, d.VideoLinks)
	assert.Equal(t, [models.VideoSlots]string{"2024-05-01", "2024-05-08", "", ""}, d.PostedOnDates)

	cmd, f = newDraftCmd("--video", "9=x")
	_, err = f.draftFrom(cmd, draftOf(current))
	assert.ErrorContains(t, err, "--video")
}

func TestDescribe(t *testing.T) {
	err := describe(&tracker.ValidationError{Fields: tracker.FieldErrors{
		"username":    models.MsgUsernameRequired,
		"profileLink": models.MsgInvalidURL,
	}})
	assert.EqualError(t, err, "invalid influencer:\n  profileLink: Please enter a valid URL\n  username: Username is required")

	other := errors.New("boom")
	assert.Same(t, other, describe(other))
}

func TestWarnOnPersistence(t *testing.T) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&stderr)

	err := warnOnPersistence(cmd, &tracker.PersistenceError{Key: "influencers", Err: errors.New("disk full")})
	assert.NoError(t, err)
	assert.Contains(t, stderr.String(), "warning: could not save influencers")

	other := &tracker.NotFoundError{ID: "x"}
	assert.Equal(t, error(other), warnOnPersistence(cmd, other))
	assert.NoError(t, warnOnPersistence(cmd, nil))
}

func TestStorageScheme(t *testing.T) {
	assert.Equal(t, "postgres", storageScheme("postgres://user:secret@db/tracker"))
	assert.Equal(t, "sqlite", storageScheme("sqlite://tracker.db"))
}

func TestPrintView(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printView(&out, tracker.View{Filter: models.FilterAll}))
	assert.Contains(t, out.String(), "No influencers found")
	assert.Contains(t, out.String(), "Total views for campaign: 0")

	out.Reset()
	require.NoError(t, printView(&out, tracker.View{
		Filter: models.FilterStatus(models.StatusPaid),
		Records: []models.Influencer{{
			ID: "a1", Username: "alice", Platform: models.PlatformBoth, ViewsMedian: 2000, TotalViews: 10000,
			VideoLinks: [models.VideoSlots]string{"v1", "v2", "", ""}, Status: models.StatusPaid,
		}},
		TotalViews: 10000,
	}))
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "10,000")
	assert.Contains(t, out.String(), "Filter: Paid")
	assert.NotContains(t, out.String(), "No influencers found")
}

// resetFlags puts every flag of cmd and its subcommands back to its default,
// since the command tree and its flag variables live for the whole test binary.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(t, sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(t, rootCmd)
	t.Cleanup(func() { resetFlags(t, rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	db := "sqlite://" + filepath.Join(dir, "tracker.db")

	out, err := run(t, "--storage", db, "add", "-u", "alice", "-l", "https://x.test/alice", "-m", "1200", "-s", "Paid")
	require.NoError(t, err, out)
	assert.Contains(t, out, "total views 6,000")

	_, err = run(t, "--storage", db, "add", "-u", "", "-l", "nope", "-m", "0")
	assert.ErrorContains(t, err, "username: Username is required")

	out, err = run(t, "--storage", db, "list", "--json")
	require.NoError(t, err)
	var view tracker.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Records, 1)
	assert.Equal(t, 6000.0, view.TotalViews)
	id := view.Records[0].ID

	out, err = run(t, "--storage", db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Total views for campaign: 6,000", "--json does not carry over")

	out, err = run(t, "--storage", db, "duplicate", id)
	require.NoError(t, err)
	assert.Contains(t, out, "alice (Copy)")

	_, err = run(t, "--storage", db, "filter", "Paid")
	require.NoError(t, err)
	out, err = run(t, "--storage", db, "filter")
	require.NoError(t, err)
	assert.Equal(t, "Paid", strings.TrimSpace(out))

	exportPath := filepath.Join(dir, "export.json")
	out, err = run(t, "--storage", db, "export", "--out", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 influencers")

	other := "sqlite://" + filepath.Join(dir, "other.db")
	out, err = run(t, "--storage", other, "import", exportPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 2 influencers")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"influencers": []}`), 0o644))
	_, err = run(t, "--storage", other, "import", bad)
	var ferr *tracker.ImportFormatError
	assert.ErrorAs(t, err, &ferr)

	_, err = run(t, "--storage", db, "delete", id)
	require.NoError(t, err)
	_, err = run(t, "--storage", db, "delete", id)
	var nf *tracker.NotFoundError
	assert.ErrorAs(t, err, &nf)

	out, err = run(t, "--storage", db, "backup", "--dir", filepath.Join(dir, "backups"))
	require.NoError(t, err)
	assert.Contains(t, out, "Backup written to")
}
