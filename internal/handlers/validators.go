package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request structs.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
				return slug.IsSlug(fl.Field().String())
			})
		}
	})
}

// makeSlug returns the supplied slug, or one derived from name.
func makeSlug(supplied, name string) string {
	if supplied != "" {
		return supplied
	}
	return slug.Make(name)
}
