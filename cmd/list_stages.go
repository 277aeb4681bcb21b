package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/turntable/scene"
	"github.com/achilleasa/turntable/tracer"
	"github.com/achilleasa/turntable/types"
	"github.com/urfave/cli"
)

// List available stage libraries and the stage types they provide.
func ListStages(ctx *cli.Context) error {
	setupLogging(ctx, nil)

	camera := scene.NewCamera(scene.CameraPose{
		Target: types.XYZ(0, 0, 1),
		Up:     types.XYZ(0, 1, 0),
	}, 45)
	rt, err := tracer.NewRuntime(camera, tracer.Options{Width: 1, Height: 1, Workers: 1})
	if err != nil {
		return err
	}
	defer rt.Close()

	var storage []byte
	buf := bytes.NewBuffer(storage)

	libs := rt.Libraries()
	buf.WriteString(fmt.Sprintf("\nRuntime provides %d stage libraries:\n\n", len(libs)))
	for lIdx, name := range libs {
		if err = rt.RegisterLibrary(name); err != nil {
			return err
		}
		buf.WriteString(fmt.Sprintf("[Library %02d] %s\n", lIdx, name))
	}
	buf.WriteString("\n")

	for dIdx, def := range rt.Registry().Definitions() {
		buf.WriteString(fmt.Sprintf("  [Stage %02d]\n    Type        %s\n    Description %s\n", dIdx, def.Type, def.Description))
		for _, port := range def.Ports {
			buf.WriteString(fmt.Sprintf("    Port        %s\n", port))
		}
		buf.WriteString("\n")
	}

	logger.Notice(buf.String())
	return nil
}
