package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VDandavate/Secret-Santa-Generator/internal/config"
)

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a commented " + config.FileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, created, err := config.Init(dir)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(c.out, "Created %s\n", path)
			} else {
				fmt.Fprintf(c.out, "%s already exists; left unchanged\n", path)
			}
			return nil
		},
	}
}
