package models

import "time"

// Platform is the social network an influencer posts on.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTikTok    Platform = "TikTok"
	PlatformBoth      Platform = "Both"
)

// Status is the campaign stage of an influencer.
type Status string

const (
	StatusPosted         Status = "Posted"
	StatusScriptNeeded   Status = "Script Needed"
	StatusApprovalNeeded Status = "Approval Needed"
	StatusPaid           Status = "Paid"
)

// FilterStatus selects which influencers are visible. It is either FilterAll or
// one of the Status values.
type FilterStatus string

const FilterAll FilterStatus = "All"

// VideoSlots is the fixed number of video link / posted-on pairs per influencer.
const VideoSlots = 4

// TotalViewsMultiplier converts a views median into the expected total views.
const TotalViewsMultiplier = 5

// Influencer is one tracked influencer of a campaign.
type Influencer struct {
	ID            string             `json:"id"`
	Username      string             `json:"username"`
	ProfileLink   string             `json:"profileLink"`
	Platform      Platform           `json:"platform"`
	ViewsMedian   float64            `json:"viewsMedian"`
	TotalViews    float64            `json:"totalViews"`
	ViewsNow      float64            `json:"viewsNow"`
	VideoLinks    [VideoSlots]string `json:"videoLinks"`
	PostedOnDates [VideoSlots]string `json:"postedOnDates"`
	Status        Status             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

var platforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformBoth}

var statuses = []Status{StatusPosted, StatusScriptNeeded, StatusApprovalNeeded, StatusPaid}

// Platforms lists the known platforms in display order.
func Platforms() []Platform {
	return append([]Platform(nil), platforms...)
}

// Statuses lists the known statuses in display order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

func (p Platform) Valid() bool {
	for _, known := range platforms {
		if p == known {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParsePlatform returns PlatformInstagram for unknown values.
func ParsePlatform(s string) Platform {
	if p := Platform(s); p.Valid() {
		return p
	}
	return PlatformInstagram
}

// ParseStatus returns StatusPosted for unknown values.
func ParseStatus(s string) Status {
	if st := Status(s); st.Valid() {
		return st
	}
	return StatusPosted
}

// ParseFilterStatus reports false when s is neither "All" nor a known status.
func ParseFilterStatus(s string) (FilterStatus, bool) {
	if FilterStatus(s) == FilterAll || Status(s).Valid() {
		return FilterStatus(s), true
	}
	return FilterAll, false
}
