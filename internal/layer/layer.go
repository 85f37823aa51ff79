// Package layer implements the nine-layer precedence lattice (spec.md
// §3.1, §4.C): pure functions deriving reference paths, precedence ranks,
// and the applicable-layer set for a given mode/scope context.
package layer

import (
	"fmt"
	"strings"
)

// Kind tags which of the nine layer variants a Layer holds.
type Kind int

const (
	GlobalBase Kind = iota
	ModeBase
	ModeScope
	ModeScopeProject
	ModeProject
	ScopeBase
	ProjectBase
	UserLocal
	WorkspaceActive
)

func (k Kind) String() string {
	switch k {
	case GlobalBase:
		return "global"
	case ModeBase:
		return "mode"
	case ModeScope:
		return "mode-scope"
	case ModeScopeProject:
		return "mode-scope-project"
	case ModeProject:
		return "mode-project"
	case ScopeBase:
		return "scope"
	case ProjectBase:
		return "project"
	case UserLocal:
		return "local"
	case WorkspaceActive:
		return "workspace"
	default:
		return "unknown"
	}
}

// Layer is the tagged sum from spec.md §3.1, parameterised by whichever of
// Mode/Scope/Project apply to its Kind.
type Layer struct {
	Kind    Kind
	Mode    string
	Scope   string
	Project string
}

func New(kind Kind) Layer                    { return Layer{Kind: kind} }
func NewMode(mode string) Layer              { return Layer{Kind: ModeBase, Mode: mode} }
func NewModeScope(mode, scope string) Layer  { return Layer{Kind: ModeScope, Mode: mode, Scope: scope} }
func NewModeScopeProject(mode, scope, project string) Layer {
	return Layer{Kind: ModeScopeProject, Mode: mode, Scope: scope, Project: project}
}
func NewModeProject(mode, project string) Layer {
	return Layer{Kind: ModeProject, Mode: mode, Project: project}
}
func NewScope(scope string) Layer     { return Layer{Kind: ScopeBase, Scope: scope} }
func NewProject(project string) Layer { return Layer{Kind: ProjectBase, Project: project} }

// Precedence returns the layer's rank 1..9; higher overrides lower.
func (l Layer) Precedence() int {
	switch l.Kind {
	case GlobalBase:
		return 1
	case ModeBase:
		return 2
	case ModeScope:
		return 3
	case ModeScopeProject:
		return 4
	case ModeProject:
		return 5
	case ScopeBase:
		return 6
	case ProjectBase:
		return 7
	case UserLocal:
		return 8
	case WorkspaceActive:
		return 9
	default:
		return 0
	}
}

// IsVersioned reports whether the layer has a backing object-store ref.
// UserLocal and WorkspaceActive (ranks 8, 9) are filesystem-only.
func (l Layer) IsVersioned() bool {
	return l.Kind != UserLocal && l.Kind != WorkspaceActive
}

const refRoot = "refs/jin/layers"

// RefPath derives the reference path for a versioned layer, or "" for
// UserLocal/WorkspaceActive. Scope identifiers are percent-escaped so a
// colon-bearing scope like "language:rust" stays a single path segment.
func (l Layer) RefPath() string {
	switch l.Kind {
	case GlobalBase:
		return refRoot + "/global"
	case ModeBase:
		return fmt.Sprintf("%s/mode/%s", refRoot, l.Mode)
	case ModeScope:
		return fmt.Sprintf("%s/mode/%s/scope/%s", refRoot, l.Mode, EscapeScope(l.Scope))
	case ModeScopeProject:
		return fmt.Sprintf("%s/mode/%s/scope/%s/project/%s", refRoot, l.Mode, EscapeScope(l.Scope), l.Project)
	case ModeProject:
		return fmt.Sprintf("%s/mode/%s/project/%s", refRoot, l.Mode, l.Project)
	case ScopeBase:
		return fmt.Sprintf("%s/scope/%s", refRoot, EscapeScope(l.Scope))
	case ProjectBase:
		return fmt.Sprintf("%s/project/%s", refRoot, l.Project)
	default:
		return ""
	}
}

// EscapeScope percent-escapes colons in a scope identifier for use as a
// single reference path segment (spec.md §3.1: ":" -> "%3A").
func EscapeScope(scope string) string {
	return strings.ReplaceAll(scope, ":", "%3A")
}

// UnescapeScope reverses EscapeScope for display.
func UnescapeScope(escaped string) string {
	return strings.ReplaceAll(escaped, "%3A", ":")
}

// Context is the mode/scope/project tuple that determines which layers are
// active for a composition (spec.md §3.5, §4.C).
type Context struct {
	Mode    string
	Scope   string
	Project string
}

// ApplicableLayers returns, in precedence-ascending order, every versioned
// layer that composition should read for ctx (spec.md §4.C). GlobalBase and
// ProjectBase are always present. A mode-bound scope shadows the untethered
// scope of the same name.
func ApplicableLayers(ctx Context) []Layer {
	var layers []Layer
	layers = append(layers, New(GlobalBase))

	switch {
	case ctx.Mode != "" && ctx.Scope != "":
		layers = append(layers, NewModeScope(ctx.Mode, ctx.Scope))
	case ctx.Mode != "":
		layers = append(layers, NewMode(ctx.Mode))
	case ctx.Scope != "":
		layers = append(layers, NewScope(ctx.Scope))
	}

	if ctx.Mode != "" && ctx.Scope != "" {
		layers = append(layers, NewModeScopeProject(ctx.Mode, ctx.Scope, ctx.Project))
	} else if ctx.Mode != "" {
		layers = append(layers, NewModeProject(ctx.Mode, ctx.Project))
	}

	layers = append(layers, NewProject(ctx.Project))

	sortByPrecedence(layers)
	return layers
}

func sortByPrecedence(layers []Layer) {
	for i := 1; i < len(layers); i++ {
		for j := i; j > 0 && layers[j-1].Precedence() > layers[j].Precedence(); j-- {
			layers[j-1], layers[j] = layers[j], layers[j-1]
		}
	}
}

// ParseString reverses Layer.String, for command-layer flags that name a
// layer the way `jin layers` prints it (e.g. "mode:writing/scope:backend").
func ParseString(s string) (Layer, bool) {
	switch {
	case s == "global":
		return New(GlobalBase), true
	case s == "local":
		return New(UserLocal), true
	case s == "workspace":
		return New(WorkspaceActive), true
	case strings.HasPrefix(s, "project:"):
		return NewProject(strings.TrimPrefix(s, "project:")), true
	case strings.HasPrefix(s, "scope:") && !strings.Contains(s, "/"):
		return NewScope(strings.TrimPrefix(s, "scope:")), true
	}

	segments := strings.Split(s, "/")
	if len(segments) >= 1 && strings.HasPrefix(segments[0], "mode:") {
		mode := strings.TrimPrefix(segments[0], "mode:")
		switch len(segments) {
		case 1:
			return NewMode(mode), true
		case 2:
			switch {
			case strings.HasPrefix(segments[1], "scope:"):
				return NewModeScope(mode, strings.TrimPrefix(segments[1], "scope:")), true
			case strings.HasPrefix(segments[1], "project:"):
				return NewModeProject(mode, strings.TrimPrefix(segments[1], "project:")), true
			}
		case 3:
			if strings.HasPrefix(segments[1], "scope:") && strings.HasPrefix(segments[2], "project:") {
				return NewModeScopeProject(mode, strings.TrimPrefix(segments[1], "scope:"), strings.TrimPrefix(segments[2], "project:")), true
			}
		}
	}
	return Layer{}, false
}

func (l Layer) String() string {
	switch l.Kind {
	case GlobalBase:
		return "global"
	case ModeBase:
		return fmt.Sprintf("mode:%s", l.Mode)
	case ModeScope:
		return fmt.Sprintf("mode:%s/scope:%s", l.Mode, l.Scope)
	case ModeScopeProject:
		return fmt.Sprintf("mode:%s/scope:%s/project:%s", l.Mode, l.Scope, l.Project)
	case ModeProject:
		return fmt.Sprintf("mode:%s/project:%s", l.Mode, l.Project)
	case ScopeBase:
		return fmt.Sprintf("scope:%s", l.Scope)
	case ProjectBase:
		return fmt.Sprintf("project:%s", l.Project)
	case UserLocal:
		return "local"
	case WorkspaceActive:
		return "workspace"
	default:
		return "unknown"
	}
}
