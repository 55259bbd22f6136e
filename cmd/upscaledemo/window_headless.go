//go:build headless

package main

import (
	"errors"

	"github.com/gogpu/upscale/render"
)

func runWindow(*render.Driver, *sceneHost) error {
	return errors.New("built with the headless tag; use -frames")
}
