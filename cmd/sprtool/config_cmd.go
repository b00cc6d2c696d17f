package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/mobispr/internal/config"
)

func cmdConfigShow(c *cli.Context) error {
	data, err := yaml.Marshal(configFrom(c))
	if err != nil {
		return cli.Exit(err, 1)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func cmdConfigInit(c *cli.Context) error {
	cfg := configFrom(c)

	path := filepath.Join(config.ConfigDir(), config.FileName)
	var err error
	if c.NArg() > 0 {
		path = c.Args().First()
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return cli.Exit(fmt.Errorf("writing config: %w", err), 1)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
