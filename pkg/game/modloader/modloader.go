// Package modloader resolves a loader build for a game version and hands it
// to the installer service.
package modloader

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLoaderUnavailable = errors.New("no loader build available")
	ErrNetwork           = errors.New("network error")
	ErrInstaller         = errors.New("installer error")
	ErrCancelled         = errors.New("cancelled")
	ErrUnknownKind       = errors.New("unknown modloader")
)

// Kind is a modloader family. The numbering follows the menu shown to users.
type Kind int

const (
	KindForge Kind = iota + 1
	KindFabric
	KindQuilt
	KindNeoForge
)

var kindNames = map[Kind]string{
	KindForge:    "Forge",
	KindFabric:   "Fabric",
	KindQuilt:    "Quilt",
	KindNeoForge: "NeoForge",
}

// Kinds lists every loader in menu order.
func Kinds() []Kind {
	return []Kind{KindForge, KindFabric, KindQuilt, KindNeoForge}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts a menu number or a loader name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "forge", "форж":
		return KindForge, nil
	case "2", "fabric", "фабрик":
		return KindFabric, nil
	case "3", "quilt", "квилт":
		return KindQuilt, nil
	case "4", "neoforge", "neo", "неофорж":
		return KindNeoForge, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Chooser picks one build out of candidates ordered newest first. Returning
// "" or ErrCancelled aborts the install.
type Chooser interface {
	Choose(ctx context.Context, kind Kind, builds []string) (string, error)
}

type ChooserFunc func(ctx context.Context, kind Kind, builds []string) (string, error)

func (f ChooserFunc) Choose(ctx context.Context, kind Kind, builds []string) (string, error) {
	return f(ctx, kind, builds)
}

// SelectedVersionStore persists the version the launcher starts next.
type SelectedVersionStore interface {
	SetSelectedVersion(id string) error
}

// Request describes one loader install.
type Request struct {
	Kind        Kind
	GameVersion string
	// LoaderVersion pins a build; empty resolves the latest one.
	LoaderVersion string
	Dir           string
	// Java runs Forge-like installer jars.
	Java string
}
