package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var reflectanceFlags = []cli.Flag{
	cli.StringFlag{Name: "scene", Usage: "scene identifier, resolved against SCENE_ROOT"},
	cli.StringFlag{Name: "window", Usage: "pixel window top:bottom:left:right"},
	cli.BoolFlag{Name: "no-cloud-filter", Usage: "keep cloudy pixels"},
	cli.StringFlag{Name: "out, o", Usage: "output path"},
}

var commands = cli.Commands{
	cli.Command{
		Name:    "toa",
		Aliases: []string{"t"},
		Usage:   "Convert one band to top-of-atmosphere reflectance GeoTIFF",
		Flags:   append([]cli.Flag{cli.IntFlag{Name: "band, b", Usage: "band number"}}, reflectanceFlags...),
		Action:  toaAction,
	},
	cli.Command{
		Name:    "index",
		Aliases: []string{"i"},
		Usage:   "Compute WDRVI or NDVI from the red and NIR bands",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "kind", Value: "wdrvi", Usage: "wdrvi or ndvi"},
			cli.Float64Flag{Name: "alpha", Value: 0.2, Usage: "WDRVI NIR weighting"},
		}, reflectanceFlags...),
		Action: indexAction,
	},
	cli.Command{
		Name:    "preview",
		Aliases: []string{"p"},
		Usage:   "Render a stretched 8-bit preview of one band",
		Flags: append([]cli.Flag{
			cli.IntFlag{Name: "band, b", Usage: "band number"},
			cli.StringFlag{Name: "stretch", Value: "percentile", Usage: "linear, percentile or equalize"},
			cli.Float64Flag{Name: "percentile", Value: 95, Usage: "clip percentile for the percentile stretch"},
			cli.Float64Flag{Name: "gamma", Value: 1, Usage: "gamma applied after the stretch"},
			cli.StringFlag{Name: "frequencies", Usage: "also write the 8-bit value counts to this CSV"},
		}, reflectanceFlags...),
		Action: previewAction,
	},
	cli.Command{
		Name:    "summary",
		Aliases: []string{"s"},
		Usage:   "Print cached reflectance statistics of bands",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "bands", Value: "1,2,3,4,5,6,7", Usage: "comma separated band numbers"},
		}, reflectanceFlags...),
		Action: summaryAction,
	},
	cli.Command{
		Name:    "quality",
		Aliases: []string{"q"},
		Usage:   "Write the per-pixel cloud score (0-6) of the BQA band",
		Flags:   reflectanceFlags,
		Action:  qualityAction,
	},
	cli.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Run a CSV of product jobs",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "jobs, j", Usage: "job CSV (scene,product,band,window,output)"},
			cli.StringFlag{Name: "out, o", Value: "result", Usage: "output directory"},
			cli.StringFlag{Name: "results", Usage: "results CSV path"},
			cli.BoolFlag{Name: "no-cloud-filter", Usage: "keep cloudy pixels"},
			cli.BoolFlag{Name: "notify", Usage: "send Discord notifications"},
		},
		Action: batchAction,
	},
	cli.Command{
		Name:    "metadata",
		Aliases: []string{"m"},
		Usage:   "Print the metadata entries of a scene",
		Flags:   []cli.Flag{cli.StringFlag{Name: "scene", Usage: "scene identifier"}},
		Action:  metadataAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "landsat-toa"
	app.Usage = "Convert Landsat 8 scenes to top-of-atmosphere reflectance products"
	app.Commands = commands
	return
}
