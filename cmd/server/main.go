package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/Clark-Hu/movielog/internal/config"
)

func main() {
	app := cli.NewApp()
	app.Name = "movielog"
	app.Usage = "Watched movies API"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "dotenv file merged into the environment",
		},
	}
	app.Before = func(c *cli.Context) error {
		return config.LoadEnvFile(c.GlobalString("env-file"))
	}
	configure(app)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "movielog: %v\n", err)
		os.Exit(1)
	}
}

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	migrateCMD := makeMigrateCMD()
	app.Commands = []cli.Command{serveCMD, migrateCMD}
	app.Action = serve
}
