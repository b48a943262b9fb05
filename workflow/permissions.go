package workflow

import (
	"fmt"
	"strings"

	"github.com/loomworks/loom/internal/ordered"
)

// Level is the access granted to a permission scope. Levels are ordered:
// Unset < None < Read < Write.
type Level uint8

const (
	Unset Level = iota
	None
	Read
	Write
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Read:
		return "read"
	case Write:
		return "write"
	}
	return ""
}

// ParseLevel parses "none", "read" or "write", ignoring case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "none":
		return None, nil
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	}
	return Unset, fmt.Errorf("invalid permission level %q", s)
}

// Shorthand is a whole-token permission setting.
type Shorthand uint8

const (
	// Individual means permissions are given per scope.
	Individual Shorthand = iota
	// NoPermissions renders as `permissions: {}`.
	NoPermissions
	ReadAllPermissions
	WriteAllPermissions
)

// Permissions is the GITHUB_TOKEN permission set of a workflow or job. When
// All is Individual, each scope field that is not Unset is rendered.
type Permissions struct {
	All Shorthand

	Actions          Level
	ArtifactMetadata Level
	Attestations     Level
	Checks           Level
	Contents         Level
	Deployments      Level
	IDToken          Level
	Issues           Level
	Models           Level
	Discussions      Level
	Packages         Level
	Pages            Level
	PullRequests     Level
	SecurityEvents   Level
	Statuses         Level
}

// ReadAll returns the read-all shorthand.
func ReadAll() *Permissions { return &Permissions{All: ReadAllPermissions} }

// WriteAll returns the write-all shorthand.
func WriteAll() *Permissions { return &Permissions{All: WriteAllPermissions} }

// NoneAll returns a permission set that disables every scope.
func NoneAll() *Permissions { return &Permissions{All: NoPermissions} }

// scope describes one permission key and the levels it accepts. id-token has
// no read level and models has no write level.
type scope struct {
	key    string
	field  func(*Permissions) *Level
	levels []Level
}

var (
	readWrite = []Level{None, Read, Write}
	writeOnly = []Level{None, Write}
	readOnly  = []Level{None, Read}
)

var scopes = []scope{
	{"actions", func(p *Permissions) *Level { return &p.Actions }, readWrite},
	{"artifact-metadata", func(p *Permissions) *Level { return &p.ArtifactMetadata }, readWrite},
	{"attestations", func(p *Permissions) *Level { return &p.Attestations }, readWrite},
	{"checks", func(p *Permissions) *Level { return &p.Checks }, readWrite},
	{"contents", func(p *Permissions) *Level { return &p.Contents }, readWrite},
	{"deployments", func(p *Permissions) *Level { return &p.Deployments }, readWrite},
	{"id-token", func(p *Permissions) *Level { return &p.IDToken }, writeOnly},
	{"issues", func(p *Permissions) *Level { return &p.Issues }, readWrite},
	{"models", func(p *Permissions) *Level { return &p.Models }, readOnly},
	{"discussions", func(p *Permissions) *Level { return &p.Discussions }, readWrite},
	{"packages", func(p *Permissions) *Level { return &p.Packages }, readWrite},
	{"pages", func(p *Permissions) *Level { return &p.Pages }, readWrite},
	{"pull-requests", func(p *Permissions) *Level { return &p.PullRequests }, readWrite},
	{"security-events", func(p *Permissions) *Level { return &p.SecurityEvents }, readWrite},
	{"statuses", func(p *Permissions) *Level { return &p.Statuses }, readWrite},
}

// Validate checks that every scope is set to a level it supports.
func (p *Permissions) Validate() error {
	if p == nil {
		return nil
	}
	if p.All > WriteAllPermissions {
		return configErrf("permissions", "unknown shorthand %d", p.All)
	}
	for _, s := range scopes {
		l := *s.field(p)
		if l == Unset {
			continue
		}
		if p.All != Individual {
			return configErrf("permissions", "%q cannot be combined with a shorthand", s.key)
		}
		if !levelIn(l, s.levels) {
			return configErrf("permissions."+s.key, "level must be one of %v, got %q", s.levels, l)
		}
	}
	return nil
}

func levelIn(l Level, levels []Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

// IsEmpty reports whether p would render nothing. NoneAll is not empty: it
// renders as {}.
func (p *Permissions) IsEmpty() bool {
	if p == nil {
		return true
	}
	if p.All != Individual {
		return false
	}
	for _, s := range scopes {
		if *s.field(p) != Unset {
			return false
		}
	}
	return true
}

// expand returns p as individual scopes.
func (p *Permissions) expand() Permissions {
	var out Permissions
	switch p.All {
	case Individual:
		out = *p
	case ReadAllPermissions:
		for _, s := range scopes {
			*s.field(&out) = Read
		}
		out.IDToken = None
	case WriteAllPermissions:
		for _, s := range scopes {
			*s.field(&out) = Write
		}
		out.Models = Read
	}
	out.All = Individual
	return out
}

// Merge combines a and b. Each scope takes the higher of its two levels, and
// write-all wins over everything. Merge is commutative and associative, and
// nil acts as the identity.
func Merge(a, b *Permissions) *Permissions {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		c := *b
		return &c
	case b == nil:
		c := *a
		return &c
	case a.All == WriteAllPermissions || b.All == WriteAllPermissions:
		return WriteAll()
	case a.All == NoPermissions && b.All == NoPermissions:
		return NoneAll()
	case isReadAllOrNone(a) && isReadAllOrNone(b):
		return ReadAll()
	}

	x, y := a.expand(), b.expand()
	var out Permissions
	for _, s := range scopes {
		*s.field(&out) = max(*s.field(&x), *s.field(&y))
	}
	return &out
}

func isReadAllOrNone(p *Permissions) bool {
	return p.All == ReadAllPermissions || p.All == NoPermissions
}

// node returns the rendered form of p.
func (p *Permissions) node() any {
	switch p.All {
	case ReadAllPermissions:
		return "read-all"
	case WriteAllPermissions:
		return "write-all"
	case NoPermissions:
		return ordered.NewMap[string, any](0)
	}
	m := ordered.NewMap[string, any](len(scopes))
	for _, s := range scopes {
		if l := *s.field(p); l != Unset {
			m.Set(s.key, l.String())
		}
	}
	return m
}
