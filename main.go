package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const usage = `minibox runs a single command inside fresh Linux namespaces.
It is a process-isolation primitive, not an orchestrator: one child is
launched, waited for, and its exit status is handed back to the shell.`

func main() {
	app := cli.NewApp()
	app.Name = "minibox"
	app.Usage = usage
	app.Commands = []cli.Command{
		initCommand,
		runCommand,
	}
	app.Before = func(context *cli.Context) error {
		log.SetFormatter(&log.TextFormatter{})
		log.SetOutput(os.Stderr)
		return nil
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
