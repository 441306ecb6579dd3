// Package classify assigns a best-effort category to a package name.
// Unknown names are tagged "other" and never cause an error.
package classify

import (
	"strings"

	"github.com/quantmind-br/nebula/internal/core"
)

// knownPackages maps well-known package names to a category
var knownPackages = map[string]core.Category{
	// Base system
	"bash":       core.CategorySystem,
	"zsh":        core.CategorySystem,
	"fish":       core.CategorySystem,
	"coreutils":  core.CategorySystem,
	"systemd":    core.CategorySystem,
	"sudo":       core.CategorySystem,
	"dnf":        core.CategorySystem,
	"rpm":        core.CategorySystem,
	"htop":       core.CategorySystem,
	"btop":       core.CategorySystem,
	"tmux":       core.CategorySystem,
	"util-linux": core.CategorySystem,
	"grub2-efi":  core.CategorySystem,
	"dracut":     core.CategorySystem,
	"flatpak":    core.CategorySystem,
	"podman":     core.CategorySystem,
	"docker-ce":  core.CategorySystem,

	// Core libraries
	"glibc":           core.CategoryLibrary,
	"zlib":            core.CategoryLibrary,
	"openssl":         core.CategoryLibrary,
	"ncurses":         core.CategoryLibrary,
	"readline":        core.CategoryLibrary,
	"oniguruma":       core.CategoryLibrary,
	"pcre2":           core.CategoryLibrary,
	"sqlite":          core.CategoryLibrary,
	"libffi":          core.CategoryLibrary,
	"ca-certificates": core.CategoryLibrary,

	// Development tools
	"gcc":          core.CategoryDevelopment,
	"gcc-c++":      core.CategoryDevelopment,
	"clang":        core.CategoryDevelopment,
	"llvm":         core.CategoryDevelopment,
	"make":         core.CategoryDevelopment,
	"cmake":        core.CategoryDevelopment,
	"meson":        core.CategoryDevelopment,
	"ninja-build":  core.CategoryDevelopment,
	"git":          core.CategoryDevelopment,
	"jq":           core.CategoryDevelopment,
	"vim-enhanced": core.CategoryDevelopment,
	"neovim":       core.CategoryDevelopment,
	"emacs":        core.CategoryDevelopment,
	"code":         core.CategoryDevelopment,
	"gdb":          core.CategoryDevelopment,
	"strace":       core.CategoryDevelopment,

	// Language runtimes
	"python3": core.CategoryLanguage,
	"perl":    core.CategoryLanguage,
	"ruby":    core.CategoryLanguage,
	"nodejs":  core.CategoryLanguage,
	"golang":  core.CategoryLanguage,
	"rust":    core.CategoryLanguage,
	"cargo":   core.CategoryLanguage,
	"lua":     core.CategoryLanguage,

	// Network clients
	"firefox":         core.CategoryInternet,
	"chromium":        core.CategoryInternet,
	"thunderbird":     core.CategoryInternet,
	"curl":            core.CategoryInternet,
	"wget2":           core.CategoryInternet,
	"wget":            core.CategoryInternet,
	"openssh":         core.CategoryInternet,
	"openssh-clients": core.CategoryInternet,
	"transmission":    core.CategoryInternet,
	"NetworkManager":  core.CategoryInternet,

	// Audio and video
	"vlc":        core.CategoryMultimedia,
	"mpv":        core.CategoryMultimedia,
	"ffmpeg":     core.CategoryMultimedia,
	"obs-studio": core.CategoryMultimedia,
	"gimp":       core.CategoryMultimedia,
	"inkscape":   core.CategoryMultimedia,
	"blender":    core.CategoryMultimedia,
	"audacity":   core.CategoryMultimedia,
	"pipewire":   core.CategoryMultimedia,

	// Desktop environments and apps
	"gnome-shell":        core.CategoryDesktop,
	"nautilus":           core.CategoryDesktop,
	"plasma-desktop":     core.CategoryDesktop,
	"dolphin":            core.CategoryDesktop,
	"konsole":            core.CategoryDesktop,
	"hyprland":           core.CategoryDesktop,
	"sway":               core.CategoryDesktop,
	"libreoffice-writer": core.CategoryDesktop,
}

type rule struct {
	match    func(name string) bool
	category core.Category
}

func prefix(p string) func(string) bool {
	return func(name string) bool { return strings.HasPrefix(name, p) }
}

func suffix(s string) func(string) bool {
	return func(name string) bool { return strings.HasSuffix(name, s) }
}

// rules are evaluated in order; the first match wins
var rules = []rule{
	{suffix("-fonts"), core.CategoryFonts},
	{prefix("google-noto-"), core.CategoryFonts},
	{suffix("-doc"), core.CategoryDocumentation},
	{suffix("-docs"), core.CategoryDocumentation},
	{prefix("man-pages"), core.CategoryDocumentation},
	{suffix("-devel"), core.CategoryDevelopment},
	{suffix("-static"), core.CategoryDevelopment},
	{prefix("golang-"), core.CategoryDevelopment},
	{prefix("rust-"), core.CategoryDevelopment},
	{prefix("python3-"), core.CategoryLanguage},
	{prefix("perl-"), core.CategoryLanguage},
	{prefix("rubygem-"), core.CategoryLanguage},
	{prefix("nodejs-"), core.CategoryLanguage},
	{prefix("lua-"), core.CategoryLanguage},
	{prefix("kernel"), core.CategorySystem},
	{prefix("systemd-"), core.CategorySystem},
	{prefix("firmware"), core.CategorySystem},
	{suffix("-firmware"), core.CategorySystem},
	{prefix("gstreamer"), core.CategoryMultimedia},
	{prefix("pipewire-"), core.CategoryMultimedia},
	{prefix("gnome-"), core.CategoryDesktop},
	{prefix("kf5-"), core.CategoryDesktop},
	{prefix("kf6-"), core.CategoryDesktop},
	{prefix("plasma-"), core.CategoryDesktop},
	{prefix("xfce4-"), core.CategoryDesktop},
	{prefix("lib"), core.CategoryLibrary},
	{suffix("-libs"), core.CategoryLibrary},
}

// Category returns the category for a canonical package name
func Category(name string) core.Category {
	if c, ok := knownPackages[name]; ok {
		return c
	}
	for _, r := range rules {
		if r.match(name) {
			return r.category
		}
	}
	return core.CategoryOther
}

// Records tags every record in place and returns the slice
func Records(records []core.PackageRecord) []core.PackageRecord {
	for i := range records {
		records[i].Category = Category(records[i].Name)
	}
	return records
}
