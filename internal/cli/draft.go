package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/creatorstation/tracker/internal/models"
)

// draftFlags are the influencer fields accepted by add and update.
type draftFlags struct {
	username    string
	profileLink string
	platform    string
	viewsMedian string
	viewsNow    string
	videos      []string
	posted      []string
	status      string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.username, "username", "u", "", "influencer username")
	fl.StringVarP(&f.profileLink, "profile-link", "l", "", "profile URL")
	fl.StringVarP(&f.platform, "platform", "p", string(models.PlatformInstagram), "Instagram, TikTok or Both")
	fl.StringVarP(&f.viewsMedian, "views-median", "m", "", "median views per video")
	fl.StringVar(&f.viewsNow, "views-now", "", "views so far")
	fl.StringArrayVar(&f.videos, "video", nil, "video link as N=URL, N in 1..4 (repeatable)")
	fl.StringArrayVar(&f.posted, "posted", nil, "posted-on date as N=YYYY-MM-DD, N in 1..4 (repeatable)")
	fl.StringVarP(&f.status, "status", "s", string(models.StatusPosted), "Posted, Script Needed, Approval Needed or Paid")
}

// draftFrom returns base with every flag the user set applied on top.
func (f *draftFlags) draftFrom(cmd *cobra.Command, base models.Draft) (models.Draft, error) {
	fl := cmd.Flags()
	d := base

	if fl.Changed("username") || base.Username == "" {
		d.Username = f.username
	}
	if fl.Changed("profile-link") || base.ProfileLink == "" {
		d.ProfileLink = f.profileLink
	}
	if fl.Changed("platform") || base.Platform == "" {
		d.Platform = models.Platform(f.platform)
	}
	if fl.Changed("views-median") || base.ViewsMedian == "" {
		d.ViewsMedian = models.NumberInput(f.viewsMedian)
	}
	if fl.Changed("views-now") {
		d.ViewsNow = models.NumberInput(f.viewsNow)
	}
	if fl.Changed("status") || base.Status == "" {
		d.Status = models.Status(f.status)
	}

	if err := setSlots(&d.VideoLinks, f.videos); err != nil {
		return d, fmt.Errorf("--video: %w", err)
	}
	if err := setSlots(&d.PostedOnDates, f.posted); err != nil {
		return d, fmt.Errorf("--posted: %w", err)
	}
	return d, nil
}

func setSlots(slots *[models.VideoSlots]string, values []string) error {
	for _, raw := range values {
		pos, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("%q is not N=value", raw)
		}
		n, err := strconv.Atoi(pos)
		if err != nil || n < 1 || n > models.VideoSlots {
			return fmt.Errorf("slot %q must be 1..%d", pos, models.VideoSlots)
		}
		slots[n-1] = strings.TrimSpace(value)
	}
	return nil
}

// draftOf turns a stored influencer back into editable form.
func draftOf(rec models.Influencer) models.Draft {
	return models.Draft{
		Username:      rec.Username,
		ProfileLink:   rec.ProfileLink,
		Platform:      rec.Platform,
		ViewsMedian:   models.NumberInput(strconv.FormatFloat(rec.ViewsMedian, 'f', -1, 64)),
		ViewsNow:      models.NumberInput(strconv.FormatFloat(rec.ViewsNow, 'f', -1, 64)),
		VideoLinks:    rec.VideoLinks,
		PostedOnDates: rec.PostedOnDates,
		Status:        rec.Status,
	}
}
