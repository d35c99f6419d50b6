package commands

import (
	"github.com/spf13/cobra"

	"github.com/jeffrey-arndt/kong-mesh-ecs/cmd/kmecs/handlers"
)

// Doctor returns the command for checking the local prerequisites.
func Doctor() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the tools kmecs uses are installed",
		Args:  noPositional,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Doctor()
		},
	}
}
