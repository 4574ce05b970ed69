package main

import (
	"fmt"
	"os"

	"github.com/minibox-run/minibox/container"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var runCommand = cli.Command{
	Name: "run",
	Usage: `Run a command inside new namespaces:
			minibox run --pid --mnt --rootfs /path/to/rootfs [command]`,
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug output",
		},
		cli.BoolFlag{
			Name:  "pid",
			Usage: "create a new PID namespace",
		},
		cli.BoolFlag{
			Name:  "mnt",
			Usage: "create a new mount namespace",
		},
		cli.StringFlag{
			Name:  "rootfs",
			Usage: "pivot into this root filesystem (implies --mnt)",
		},
		cli.StringSliceFlag{
			Name:  "env, e",
			Usage: "set environment variable KEY=VALUE",
		},
		cli.BoolFlag{
			Name:  "detach, d",
			Usage: "do not wait for the command to exit",
		},
	},
	/*
	 * 1. check that a command was given
	 * 2. build the launch config from the flags
	 * 3. hand it to Run, which owns the exit code
	 */
	Action: func(context *cli.Context) error {
		if len(context.Args()) < 1 {
			return fmt.Errorf("missing command to run")
		}
		if context.Bool("debug") {
			log.SetLevel(log.DebugLevel)
		}
		var argv []string
		for _, arg := range context.Args() {
			argv = append(argv, arg)
		}
		config := &container.LaunchConfig{
			Program: argv[0],
			Argv:    argv,
			Env:     mergeEnv(context.StringSlice("env")),
			Debug:   context.Bool("debug"),
			Isolation: container.Isolation{
				NewPID:   context.Bool("pid"),
				NewMount: context.Bool("mnt"),
			},
			Rootfs: context.String("rootfs"),
		}
		os.Exit(Run(config, context.Bool("detach")))
		return nil
	},
}

// initCommand is the child entry point. The launcher re-executes this
// binary as "minibox init" inside the new namespaces; nothing else
// should ever invoke it.
var initCommand = cli.Command{
	Name:   "init",
	Usage:  "Set up isolation and exec the target program. Do not call it outside",
	Hidden: true,
	Action: func(context *cli.Context) error {
		return container.RunInit()
	},
}
