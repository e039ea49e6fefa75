package api

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/creatorstation/tracker/internal/models"
)

type FilterBody struct {
	Filter string `json:"filter"`
}

func (b FilterBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Filter, v.Required, v.In(filterValues()...)),
	)
}

type ImportURLBody struct {
	URL string `json:"url"`
}

func (b ImportURLBody) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.URL, v.Required, is.URL),
	)
}

func filterValues() []interface{} {
	out := []interface{}{string(models.FilterAll)}
	for _, s := range models.Statuses() {
		out = append(out, string(s))
	}
	return out
}
