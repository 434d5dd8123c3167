// Shared helpers for doublets CLI commands: store selection, restriction
// parsing, and error-to-exit-code mapping.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/linkforge/doublets/internal/daemon"
	"github.com/linkforge/doublets/internal/engine"
	"github.com/linkforge/doublets/internal/memory"
	"github.com/linkforge/doublets/internal/sqlite"
	"github.com/linkforge/doublets/pkg/links"
	"github.com/linkforge/doublets/pkg/notation"
)

// openStore selects and opens the configured store backend. The caller must
// defer Close.
func openStore() (links.Store, error) {
	backend := flagStore
	if backend == "" {
		backend = configStore
	}
	if backend == "" {
		backend = defaultStore
	}

	switch backend {
	case "sqlite":
		dataDir, err := resolveDataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		return sqlite.Open(dataDir)

	case "memory":
		return memory.NewStore(), nil

	case "daemon":
		socket, err := resolveSocketPath()
		if err != nil {
			return nil, err
		}
		return daemon.Dial(socket)
	}
	return nil, fmt.Errorf("unknown store %q (valid: sqlite, memory, daemon): %w", backend, links.ErrInvalidArgument)
}

// openLinks opens the configured store and wraps it in the engine facade.
func openLinks() (links.Links, func() error, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return engine.New(store), store.Close, nil
}

// resolveSocketPath follows --socket > config socket > <data_dir>/doublets.sock.
func resolveSocketPath() (string, error) {
	if flagSocket != "" {
		return flagSocket, nil
	}
	if configSocket != "" {
		return configSocket, nil
	}
	dataDir, err := resolveDataDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(dataDir, daemon.DefaultSocketName), nil
}

// parseRestriction builds a restriction from positional (id, source, target)
// arguments. Each slot is a number or the wildcard token "any" (also "*").
// Absent trailing slots are wildcards.
func parseRestriction(args []string) (links.Restriction, error) {
	var r links.Restriction
	if len(args) > 3 {
		return r, fmt.Errorf("restriction takes at most (id, source, target): %w", links.ErrInvalidArgument)
	}
	slots := []*links.Slot{&r.ID, &r.Source, &r.Target}
	for i, arg := range args {
		if arg == "any" || arg == "*" {
			continue
		}
		n, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return r, fmt.Errorf("%q is not a link id or wildcard: %w", arg, links.ErrInvalidArgument)
		}
		*slots[i] = links.Exactly(links.LinkID(n))
	}
	return r, nil
}

// parseLinkID parses one numeric id argument.
func parseLinkID(arg string) (links.LinkID, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return links.None, fmt.Errorf("%q is not a link id: %w", arg, links.ErrInvalidArgument)
	}
	return links.LinkID(n), nil
}

// fail prints the error in notation form and exits with the taxonomy's exit
// code: user errors exit 1, store and internal failures exit 2.
func fail(err error) {
	fmt.Fprintln(os.Stderr, notation.FormatError(err))
	switch {
	case errors.Is(err, links.ErrInvalidArgument),
		errors.Is(err, links.ErrNotFound),
		errors.Is(err, links.ErrAmbiguousMatch),
		errors.Is(err, links.ErrUnresolvedReference),
		errors.Is(err, links.ErrParse):
		os.Exit(exitUserError)
	default:
		os.Exit(exitSysError)
	}
}
