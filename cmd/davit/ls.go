// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"davit-cli/internal/registry"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the commands defined in the catalog",
	Args:  cobra.NoArgs,
	RunE:  listInteractions,
}

func listInteractions(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	reg, err := registry.Build(cat)
	if err != nil {
		return err
	}

	descriptors := reg.All()
	if len(descriptors) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("No commands defined in "+cat.FilePath))
		return nil
	}

	width := 0
	for _, d := range descriptors {
		if n := len(d.Name()); n > width {
			width = n
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("Commands")+SubtitleStyle.Render(" ("+cat.FilePath+")"))
	for _, d := range descriptors {
		name := fmt.Sprintf("%-*s", width, d.Name())
		line := "  " + CmdStyle.Render(name)
		if summary := describe(d); summary != "" {
			line += "  " + SubtitleStyle.Render(summary)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// describe returns the listing annotation for a descriptor: its description
// when set, otherwise where and what it runs.
func describe(d *registry.Descriptor) string {
	if d.Description != "" {
		return d.Description
	}
	switch {
	case d.Service != "":
		return d.Command + " (service " + d.Service + ")"
	case d.Pod != "":
		return d.Command + " (pod " + d.Pod + ")"
	default:
		return d.Command
	}
}
