package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/rotoplay/version"
)

func newVersionCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out, err := yaml.Marshal(version.Get())
			if err != nil {
				return fmt.Errorf("encoding version: %w", err)
			}

			_, err = s.out.Write(out)
			if err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			return nil
		},
	}
}
