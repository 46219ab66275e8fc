package controllers

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/cloudcopper/buildwatch/infra"
	"github.com/cloudcopper/buildwatch/ports"
)

type AboutController struct {
	log    ports.Logger
	render infra.Render
}

func NewAboutController(log ports.Logger, render infra.Render) *AboutController {
	log = log.With(slog.String("entity", "AboutController"))
	c := &AboutController{
		log:    log,
		render: render,
	}
	return c
}

func (c *AboutController) Index(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Path      string `json:"path"`
		Version   string `json:"version"`
		GoVersion string `json:"goVersion"`
	}{}
	if info, ok := debug.ReadBuildInfo(); ok {
		data.Path = info.Main.Path
		data.Version = info.Main.Version
		data.GoVersion = info.GoVersion
	}
	_ = c.render.JSON(w, http.StatusOK, data)
}
