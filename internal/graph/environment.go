package graph

import (
	"sort"
	"strings"
)

// Construction variables understood by the engine.
const (
	VarCXX       = "CXX"
	VarLinkFlags = "LINKFLAGS"
	VarLibs      = "LIBS"
	VarLinkCom   = "LINKCOM"
	VarShell     = "SHELL"
)

// DefaultLinkCom links a program from its object sources.
const DefaultLinkCom = "$CXX -o $TARGET $SOURCES $LINKFLAGS $LIBS"

const maxSubstDepth = 16

// Environment holds construction variables and ENV, the process environment
// handed to every command the engine executes.
type Environment struct {
	vars map[string]string

	// ENV is the complete environment of executed commands. It is not
	// inherited from the host process.
	ENV map[string]string
}

// NewEnvironment returns an environment with the default link command.
func NewEnvironment() *Environment {
	return &Environment{
		vars: map[string]string{
			VarCXX:     "c++",
			VarLinkCom: DefaultLinkCom,
			VarShell:   "/bin/sh",
		},
		ENV: make(map[string]string),
	}
}

// Set assigns a construction variable
func (e *Environment) Set(key, value string) {
	e.vars[key] = value
}

// SetList assigns a construction variable from space separated values
func (e *Environment) SetList(key string, values []string) {
	e.vars[key] = strings.Join(values, " ")
}

// Get returns a construction variable, "" when it is not set
func (e *Environment) Get(key string) string {
	return e.vars[key]
}

// Environ returns ENV as sorted KEY=VALUE pairs
func (e *Environment) Environ() []string {
	keys := make([]string, 0, len(e.ENV))
	for k := range e.ENV {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+e.ENV[k])
	}
	return env
}

// Subst expands $VAR and ${VAR} references in template. $TARGET, $SOURCE and
// $SOURCES refer to n; "$$" is a literal dollar sign. Unknown variables
// expand to nothing.
func (e *Environment) Subst(template string, n *Node) string {
	return e.subst(template, n, 0)
}

func (e *Environment) subst(template string, n *Node, depth int) string {
	if depth > maxSubstDepth || !strings.Contains(template, "$") {
		return template
	}

	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i == len(template)-1 {
			b.WriteByte(c)
			continue
		}

		next := template[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(template[i+2:], '}')
			if end < 0 {
				b.WriteString(template[i:])
				return b.String()
			}
			name := template[i+2 : i+2+end]
			b.WriteString(e.lookup(name, n, depth))
			i += end + 2
		case isNameByte(next):
			j := i + 1
			for j < len(template) && isNameByte(template[j]) {
				j++
			}
			b.WriteString(e.lookup(template[i+1:j], n, depth))
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (e *Environment) lookup(name string, n *Node, depth int) string {
	switch name {
	case "TARGET", "TARGETS":
		if n == nil {
			return ""
		}
		return n.Name
	case "SOURCE":
		if n == nil || len(n.Sources) == 0 {
			return ""
		}
		return n.Sources[0].Name
	case "SOURCES":
		if n == nil {
			return ""
		}
		names := make([]string, 0, len(n.Sources))
		for _, s := range n.Sources {
			names = append(names, s.Name)
		}
		return strings.Join(names, " ")
	}
	return e.subst(e.vars[name], n, depth+1)
}

func isNameByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
