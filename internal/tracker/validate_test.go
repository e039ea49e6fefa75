package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creatorstation/tracker/internal/models"
)

func TestValidate(t *testing.T) {
	valid := models.Draft{
		Username:    "alice",
		ProfileLink: "https://www.instagram.com/alice",
		ViewsMedian: "1500",
	}

	tests := []struct {
		name   string
		modify func(d *models.Draft)
		want   FieldErrors
	}{
		{
			name:   "valid",
			modify: func(d *models.Draft) {},
			want:   FieldErrors{},
		},
		{
			name:   "empty username",
			modify: func(d *models.Draft) { d.Username = "" },
			want:   FieldErrors{"username": models.MsgUsernameRequired},
		},
		{
			name:   "blank username",
			modify: func(d *models.Draft) { d.Username = "   " },
			want:   FieldErrors{"username": models.MsgUsernameRequired},
		},
		{
			name:   "missing profile link",
			modify: func(d *models.Draft) { d.ProfileLink = " " },
			want:   FieldErrors{"profileLink": models.MsgProfileLinkRequired},
		},
		{
			name:   "profile link is not a url",
			modify: func(d *models.Draft) { d.ProfileLink = "not-a-url" },
			want:   FieldErrors{"profileLink": models.MsgInvalidURL},
		},
		{
			name:   "profile link without host",
			modify: func(d *models.Draft) { d.ProfileLink = "mailto:alice@example.com" },
			want:   FieldErrors{"profileLink": models.MsgInvalidURL},
		},
		{
			name:   "missing median",
			modify: func(d *models.Draft) { d.ViewsMedian = "" },
			want:   FieldErrors{"viewsMedian": models.MsgViewsMedianPositive},
		},
		{
			name:   "zero median",
			modify: func(d *models.Draft) { d.ViewsMedian = "0" },
			want:   FieldErrors{"viewsMedian": models.MsgViewsMedianPositive},
		},
		{
			name:   "negative median",
			modify: func(d *models.Draft) { d.ViewsMedian = "-3" },
			want:   FieldErrors{"viewsMedian": models.MsgViewsMedianPositive},
		},
		{
			name:   "non numeric median",
			modify: func(d *models.Draft) { d.ViewsMedian = "lots" },
			want:   FieldErrors{"viewsMedian": models.MsgViewsMedianPositive},
		},
		{
			name: "everything wrong",
			modify: func(d *models.Draft) {
				*d = models.Draft{}
			},
			want: FieldErrors{
				"username":    models.MsgUsernameRequired,
				"profileLink": models.MsgProfileLinkRequired,
				"viewsMedian": models.MsgViewsMedianPositive,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.modify(&d)

			got := Validate(d)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, got.Valid())
		})
	}
}

func TestValidate_IgnoresOptionalFields(t *testing.T) {
	d := models.Draft{
		Username:      "alice",
		ProfileLink:   "https://tiktok.com/@alice",
		ViewsMedian:   "1",
		ViewsNow:      "garbage",
		Platform:      "MySpace",
		Status:        "Whatever",
		VideoLinks:    [models.VideoSlots]string{"not a url"},
		PostedOnDates: [models.VideoSlots]string{"yesterday"},
	}

	assert.True(t, Validate(d).Valid())
}
