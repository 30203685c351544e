package cmd

import (
	"io"

	"github.com/cottand/genres/members"
	"github.com/cottand/genres/policy"
	"github.com/cottand/genres/types"
	"github.com/spf13/cobra"
)

func NewMembersCmd() *cobra.Command {
	cfg := &members.Config{}
	cmd := &cobra.Command{
		Use:   "members FILE TYPE",
		Short: "Print the flattened members of a type with their annotations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commandError(runMembers(cmd.OutOrStdout(), args[0], args[1], *cfg))
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&cfg.IncludeTopType, "include-top", false, "also flatten members of the top type")
	cmd.Flags().BoolVar(&cfg.IgnoreMixins, "no-mixins", false, "ignore the mix-ins declared in FILE")
	return cmd
}

func runMembers(out io.Writer, path, typeText string, cfg members.Config) error {
	t, err := loadTarget(path, typeText, types.ResolverConfig{})
	if err != nil {
		return err
	}
	annotations, err := policy.FromDocument(t.doc)
	if err != nil {
		return err
	}
	resolved, err := members.NewMemberResolver(t.resolver, cfg).Resolve(t.resolved, annotations, policy.OverridesFromDocument(t.doc))
	if err != nil {
		return err
	}

	classAnnotations, err := resolved.ClassAnnotations()
	if err != nil {
		return err
	}
	printf(out, "%s %s\n", resolved.MainType(), classAnnotations)

	fields, err := resolved.MemberFields()
	if err != nil {
		return err
	}
	staticFields, err := resolved.StaticFields()
	if err != nil {
		return err
	}
	methods, err := resolved.MemberMethods()
	if err != nil {
		return err
	}
	staticMethods, err := resolved.StaticMethods()
	if err != nil {
		return err
	}
	ctors, err := resolved.Constructors()
	if err != nil {
		return err
	}

	printSection(out, "fields", fields, func(f *members.ResolvedField) { printf(out, "  %s %s\n", f, f.Annotations) })
	printSection(out, "static fields", staticFields, func(f *members.ResolvedField) { printf(out, "  %s %s\n", f, f.Annotations) })
	printSection(out, "methods", methods, func(m *members.ResolvedMethod) {
		printf(out, "  %s %s\n", m, m.Annotations)
		printParams(out, m.ParamAnnotations)
	})
	printSection(out, "static methods", staticMethods, func(m *members.ResolvedMethod) {
		printf(out, "  %s %s\n", m, m.Annotations)
		printParams(out, m.ParamAnnotations)
	})
	printSection(out, "constructors", ctors, func(c *members.ResolvedConstructor) {
		printf(out, "  %s %s\n", c, c.Annotations)
		printParams(out, c.ParamAnnotations)
	})
	return nil
}

func printSection[M any](out io.Writer, title string, ms []M, each func(M)) {
	if len(ms) == 0 {
		return
	}
	printf(out, "%s:\n", title)
	for _, m := range ms {
		each(m)
	}
}

func printParams(out io.Writer, params []*members.Annotations) {
	for i, anns := range params {
		if anns.Len() > 0 {
			printf(out, "    #%d %s\n", i, anns)
		}
	}
}
