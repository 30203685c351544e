package cmd

import (
	"io"

	"github.com/cottand/genres/hierarchy"
	"github.com/cottand/genres/policy"
	"github.com/cottand/genres/types"
	"github.com/spf13/cobra"
)

func NewHierarchyCmd() *cobra.Command {
	cfg := &hierarchy.Config{}
	cmd := &cobra.Command{
		Use:   "hierarchy FILE TYPE",
		Short: "Print the linearized ancestry of a type, lowest precedence first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandError(runHierarchy(cmd.OutOrStdout(), args[0], args[1], *cfg))
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&cfg.IncludeTopType, "include-top", false, "keep the top type in the hierarchy")
	cmd.Flags().BoolVar(&cfg.IgnoreMixins, "no-mixins", false, "ignore the mix-ins declared in FILE")
	return cmd
}

func runHierarchy(out io.Writer, path, typeText string, cfg hierarchy.Config) error {
	t, err := loadTarget(path, typeText, types.ResolverConfig{})
	if err != nil {
		return err
	}
	h, err := hierarchy.Linearize(t.resolver, t.resolved, policy.OverridesFromDocument(t.doc), cfg)
	if err != nil {
		return err
	}
	main, hasMain := h.MainType()
	for _, entry := range h.Types() {
		if hasMain && entry.Rank == main.Rank {
			printf(out, "%s *\n", entry)
			continue
		}
		printf(out, "%s\n", entry)
	}
	return nil
}
