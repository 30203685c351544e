package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cottand/genres/decl"
	"github.com/cottand/genres/internal/log"
	"github.com/cottand/genres/typeerr"
	"github.com/cottand/genres/types"
	"github.com/pkg/errors"
)

var logger = log.Section(nil, "cli")

// target is a loaded universe document plus the type named on the command line
type target struct {
	doc      *decl.Document
	resolver *types.Resolver
	resolved types.ResolvedType
}

func loadTarget(path, typeText string, cfg types.ResolverConfig) (*target, error) {
	doc, err := decl.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded universe", "path", path, "classes", len(doc.Universe.Classes()))

	resolver, err := types.NewResolver(doc.Universe, cfg)
	if err != nil {
		return nil, err
	}
	// TYPE may be any signature, eg 'Map<String, List<Integer>>'
	sig, err := decl.Parse(doc.Universe, typeText)
	if err != nil {
		return nil, errors.Wrapf(err, "type '%s'", typeText)
	}
	resolved, err := resolver.ResolveType(sig)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve '%s'", typeText)
	}
	return &target{doc: doc, resolver: resolver, resolved: resolved}, nil
}

// commandError tags domain errors with their code, logging where they came from
func commandError(err error) error {
	if err == nil {
		return nil
	}
	var typeErr typeerr.TypeError
	if !errors.As(err, &typeErr) {
		return err
	}
	logger.Debug("command failed", "error", typeerr.FormatWithCode(typeErr))
	return errors.Wrapf(err, "%s error", typeErr.Code())
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// SetLogLevel is meant for a root command's PersistentPreRun
func SetLogLevel(level int) {
	log.SetLevel(slog.Level(level))
}
