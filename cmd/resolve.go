package cmd

import (
	"io"

	"github.com/cottand/genres/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type resolveFlags struct {
	cache     string
	cacheSize int
	as        string
	narrow    string
}

func NewResolveCmd() *cobra.Command {
	flags := &resolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve FILE TYPE",
		Short: "Resolve a type against a universe document and print its ancestry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandError(runResolve(cmd.OutOrStdout(), args[0], args[1], flags))
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&flags.cache, "cache", types.CacheLRU.String(), "cache strategy, lru or concurrent")
	cmd.Flags().IntVar(&flags.cacheSize, "cache-size", types.DefaultCacheEntries, "maximum cached types")
	cmd.Flags().StringVar(&flags.as, "as", "", "also print the ancestor of TYPE with this erased class")
	cmd.Flags().StringVar(&flags.narrow, "narrow", "", "resolve this subclass of TYPE instead, keeping the known bindings")
	return cmd
}

func runResolve(out io.Writer, path, typeText string, flags *resolveFlags) error {
	strategy, err := types.ParseCacheStrategy(flags.cache)
	if err != nil {
		return err
	}
	t, err := loadTarget(path, typeText, types.ResolverConfig{Cache: strategy, MaxEntries: flags.cacheSize})
	if err != nil {
		return err
	}
	resolved := t.resolved
	if flags.narrow != "" {
		sub, ok := t.doc.Universe.Lookup(flags.narrow)
		if !ok {
			return errors.Errorf("unknown class '%s'", flags.narrow)
		}
		if resolved, err = t.resolver.ResolveSubtype(resolved, sub); err != nil {
			return err
		}
	}
	printResolved(out, resolved)

	if flags.as != "" {
		ancestor, ok := t.doc.Universe.Lookup(flags.as)
		if !ok {
			return errors.Errorf("unknown class '%s'", flags.as)
		}
		supertype := types.FindSupertype(resolved, ancestor)
		if supertype == nil {
			return errors.Errorf("'%s' is not an ancestor of '%s'", flags.as, resolved)
		}
		printf(out, "as %s\n", supertype)
	}
	return nil
}

func printResolved(out io.Writer, t types.ResolvedType) {
	printf(out, "%s (%s)\n", t, t.Kind())
	if element := t.ArrayElementType(); element != nil {
		printf(out, "  element %s\n", element)
	}
	if bindings := t.TypeBindings(); !bindings.IsEmpty() {
		printf(out, "  bindings %s\n", bindings)
	}
	for parent := t.ParentClass(); parent != nil; parent = parent.ParentClass() {
		printf(out, "  extends %s\n", parent)
	}
	for _, iface := range t.ImplementedInterfaces() {
		printf(out, "  implements %s\n", iface)
	}
}
