package infra

import (
	"os"

	"github.com/unrolled/render"
)

type Render = *render.Render

// NewRender returns JSON only render
func NewRender() Render {
	opts := render.Options{
		IndentJSON:    true,
		IsDevelopment: os.Getenv("GO_ENV") == "development",
	}
	return render.New(opts)
}
