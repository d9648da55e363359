// Package builtins provides the shell's built-in commands: small,
// dependency-light reimplementations of common coreutils plus one
// shell-native addition (watch) that has no meaningful external
// equivalent to fall back on.
package builtins

import "github.com/mysh-lang/mysh/pkgs/registry"

// Register installs every built-in command into reg.
func Register(reg *registry.Registry) {
	reg.Register(Echo{})
	reg.Register(Cd{})
	reg.Register(Pwd{})
	reg.Register(Exit{})
	reg.Register(CatHeadTail{Mode: modeCat})
	reg.Register(CatHeadTail{Mode: modeHead})
	reg.Register(CatHeadTail{Mode: modeTail})
	reg.Register(Ls{})
	reg.Register(Watch{})
}
