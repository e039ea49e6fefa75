package models

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MsgUsernameRequired    = "Username is required"
	MsgProfileLinkRequired = "Profile link is required"
	MsgInvalidURL          = "Please enter a valid URL"
	MsgViewsMedianPositive = "Views median must be a positive number"
)

// NumberInput is a numeric form value. It decodes from either a JSON number or a
// JSON string so that raw form input can be submitted unchanged.
type NumberInput string

func (n *NumberInput) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberInput(s)
		return nil
	}
	*n = NumberInput(b)
	return nil
}

// Float parses the input. ok is false for empty or non-finite values.
func (n NumberInput) Float() (f float64, ok bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Draft holds the user-entered fields of an influencer before validation.
type Draft struct {
	Username      string             `json:"username"`
	ProfileLink   string             `json:"profileLink"`
	Platform      Platform           `json:"platform"`
	ViewsMedian   NumberInput        `json:"viewsMedian"`
	ViewsNow      NumberInput        `json:"viewsNow"`
	VideoLinks    [VideoSlots]string `json:"videoLinks"`
	PostedOnDates [VideoSlots]string `json:"postedOnDates"`
	Status        Status             `json:"status"`
}

func (d Draft) Validate() error {
	d.Username = strings.TrimSpace(d.Username)
	d.ProfileLink = strings.TrimSpace(d.ProfileLink)

	return v.ValidateStruct(&d,
		v.Field(&d.Username, v.Required.Error(MsgUsernameRequired)),
		v.Field(&d.ProfileLink,
			v.Required.Error(MsgProfileLinkRequired),
			is.RequestURL.Error(MsgInvalidURL),
			v.By(absoluteURL),
		),
		v.Field(&d.ViewsMedian, v.By(positiveNumber)),
	)
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return v.NewError("validation_is_url", MsgInvalidURL)
	}
	return nil
}

func positiveNumber(value interface{}) error {
	n, _ := value.(NumberInput)
	if f, ok := n.Float(); !ok || f <= 0 {
		return v.NewError("validation_positive_number", MsgViewsMedianPositive)
	}
	return nil
}
