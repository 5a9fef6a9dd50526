package staging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cheesejaguar/oxide-release/internal/config"
)

// DesktopEntry renders the freedesktop.org desktop entry registered by the
// Linux package formats.
func DesktopEntry(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", cfg.AppName)
	fmt.Fprintf(&b, "Comment=%s\n", cfg.Description)
	fmt.Fprintf(&b, "Exec=%s %%u\n", cfg.Executable)
	fmt.Fprintf(&b, "Icon=%s\n", cfg.PackageName())
	b.WriteString("Terminal=false\n")
	fmt.Fprintf(&b, "StartupWMClass=%s\n", cfg.Executable)

	if len(cfg.Categories) > 0 {
		fmt.Fprintf(&b, "Categories=%s;\n", strings.Join(cfg.Categories, ";"))
	}

	if len(cfg.MimeTypes) > 0 {
		fmt.Fprintf(&b, "MimeType=%s;\n", strings.Join(cfg.MimeTypes, ";"))
	}

	b.WriteString("Actions=new-window;\n")
	b.WriteString("\n[Desktop Action new-window]\n")
	b.WriteString("Name=New Window\n")
	fmt.Fprintf(&b, "Exec=%s --new-window\n", cfg.Executable)

	return b.String()
}

// DebianControl renders the control block for the .deb output. Installed-Size
// is the staged tree's disk usage in kibibytes, computed after assembly.
func DebianControl(cfg *config.Config, arch string, installedKiB int64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Package: %s\n", cfg.PackageName())
	fmt.Fprintf(&b, "Version: %s\n", cfg.Version)
	b.WriteString("Section: web\n")
	b.WriteString("Priority: optional\n")
	fmt.Fprintf(&b, "Architecture: %s\n", arch)
	fmt.Fprintf(&b, "Maintainer: %s\n", cfg.Maintainer)
	fmt.Fprintf(&b, "Installed-Size: %d\n", installedKiB)

	if len(cfg.Depends) > 0 {
		fmt.Fprintf(&b, "Depends: %s\n", strings.Join(cfg.Depends, ", "))
	}

	if cfg.Homepage != "" {
		fmt.Fprintf(&b, "Homepage: %s\n", cfg.Homepage)
	}

	fmt.Fprintf(&b, "Description: %s\n", cfg.Description)

	return b.String()
}

// MetainfoXML renders the AppStream metadata manifest shipped with the Linux
// package formats: identifier, license, description and release history.
func MetainfoXML(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<component type="desktop-application">` + "\n")
	fmt.Fprintf(&b, "  <id>%s</id>\n", xmlEscape(cfg.Identifier))
	fmt.Fprintf(&b, "  <name>%s</name>\n", xmlEscape(cfg.AppName))
	fmt.Fprintf(&b, "  <summary>%s</summary>\n", xmlEscape(cfg.Description))
	b.WriteString("  <metadata_license>CC0-1.0</metadata_license>\n")
	fmt.Fprintf(&b, "  <project_license>%s</project_license>\n", xmlEscape(cfg.License))
	b.WriteString("  <description>\n")
	fmt.Fprintf(&b, "    <p>%s</p>\n", xmlEscape(cfg.Description))
	b.WriteString("  </description>\n")
	fmt.Fprintf(&b, "  <launchable type=\"desktop-id\">%s.desktop</launchable>\n", xmlEscape(cfg.PackageName()))

	if cfg.Homepage != "" {
		fmt.Fprintf(&b, "  <url type=\"homepage\">%s</url>\n", xmlEscape(cfg.Homepage))
	}

	b.WriteString("  <releases>\n")
	fmt.Fprintf(&b, "    <release version=%q date=%q/>\n", cfg.Version, time.Now().UTC().Format("2006-01-02"))
	b.WriteString("  </releases>\n")
	b.WriteString("</component>\n")

	return b.String()
}

// InfoPlist renders the macOS bundle manifest. Identifier and version are
// rewritten in place after the bundle is assembled, matching how a
// pre-existing template would be treated.
func InfoPlist(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString(`<plist version="1.0">` + "\n<dict>\n")
	fmt.Fprintf(&b, "\t<key>CFBundleName</key>\n\t<string>%s</string>\n", xmlEscape(cfg.AppName))
	fmt.Fprintf(&b, "\t<key>CFBundleDisplayName</key>\n\t<string>%s</string>\n", xmlEscape(cfg.AppName))
	fmt.Fprintf(&b, "\t<key>CFBundleExecutable</key>\n\t<string>%s</string>\n", xmlEscape(cfg.Executable))
	b.WriteString("\t<key>CFBundleIdentifier</key>\n\t<string>PLACEHOLDER</string>\n")
	b.WriteString("\t<key>CFBundleShortVersionString</key>\n\t<string>0.0.0</string>\n")
	b.WriteString("\t<key>CFBundleVersion</key>\n\t<string>0.0.0</string>\n")
	b.WriteString("\t<key>CFBundlePackageType</key>\n\t<string>APPL</string>\n")
	b.WriteString("\t<key>CFBundleIconFile</key>\n\t<string>app.icns</string>\n")
	b.WriteString("\t<key>LSMinimumSystemVersion</key>\n\t<string>11.0</string>\n")
	b.WriteString("\t<key>NSHighResolutionCapable</key>\n\t<true/>\n")
	b.WriteString("\t<key>CFBundleDocumentTypes</key>\n\t<array>\n\t\t<dict>\n")
	b.WriteString("\t\t\t<key>CFBundleTypeName</key>\n\t\t\t<string>HTML Document</string>\n")
	b.WriteString("\t\t\t<key>CFBundleTypeRole</key>\n\t\t\t<string>Viewer</string>\n")
	b.WriteString("\t\t\t<key>LSItemContentTypes</key>\n\t\t\t<array>\n\t\t\t\t<string>public.html</string>\n\t\t\t</array>\n")
	b.WriteString("\t\t</dict>\n\t</array>\n")
	b.WriteString("</dict>\n</plist>\n")

	return b.String()
}

// UpdatePlistFields rewrites the bundle identifier and version values of an
// Info.plist in place. The rewrite targets the <string> element following
// each key, leaving the rest of the document untouched.
func UpdatePlistFields(path, identifier, version string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	replacements := map[string]string{
		"CFBundleIdentifier":         identifier,
		"CFBundleShortVersionString": version,
		"CFBundleVersion":            version,
	}

	lines := strings.Split(string(contents), "\n")

	for i := 0; i < len(lines)-1; i++ {
		for key, value := range replacements {
			if strings.Contains(lines[i], "<key>"+key+"</key>") {
				indent := lines[i+1][:len(lines[i+1])-len(strings.TrimLeft(lines[i+1], " \t"))]
				lines[i+1] = fmt.Sprintf("%s<string>%s</string>", indent, xmlEscape(value))
			}
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), info.Mode().Perm())
}

// MaintainerScripts returns the Debian maintainer scripts keyed by name.
// Each hook refreshes desktop, icon and MIME caches and is best-effort: a
// missing cache tool on the target system never breaks the install.
func MaintainerScripts(cfg *config.Config) map[string]string {
	var b strings.Builder

	b.WriteString(`if command -v update-desktop-database >/dev/null 2>&1; then
    update-desktop-database -q /usr/share/applications || true
fi
if command -v gtk-update-icon-cache >/dev/null 2>&1; then
    gtk-update-icon-cache -q -t -f /usr/share/icons/hicolor || true
fi
`)

	// The MIME cache only needs refreshing when the desktop entry
	// registers MIME types.
	if len(cfg.MimeTypes) > 0 {
		b.WriteString(`if command -v update-mime-database >/dev/null 2>&1; then
    update-mime-database /usr/share/mime || true
fi
`)
	}

	refresh := b.String()
	header := "#!/bin/sh\nset -e\n\n"

	return map[string]string{
		"postinst": header + refresh + "\nexit 0\n",
		"prerm":    header + "exit 0\n",
		"postrm":   header + refresh + "\nexit 0\n",
	}
}

// AppRunScript renders the AppImage launcher. Library and search paths are
// resolved relative to the launcher's own location so the image runs from
// any mount point.
func AppRunScript(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString("#!/bin/sh\n")
	b.WriteString(`HERE="$(dirname "$(readlink -f "$0")")"` + "\n")
	b.WriteString(`export LD_LIBRARY_PATH="$HERE/usr/lib:$LD_LIBRARY_PATH"` + "\n")
	b.WriteString(`export PATH="$HERE/usr/bin:$PATH"` + "\n")
	b.WriteString(`export XDG_DATA_DIRS="$HERE/usr/share:${XDG_DATA_DIRS:-/usr/local/share:/usr/share}"` + "\n")
	fmt.Fprintf(&b, `exec "$HERE/usr/bin/%s" "$@"`+"\n", cfg.Executable)

	return b.String()
}

// PortableReadme renders the usage note shipped inside the portable archive.
func PortableReadme(cfg *config.Config) string {
	return fmt.Sprintf(`%s %s (portable)

This archive contains a self-contained copy of %s. Nothing is installed
on the system: extract it anywhere and run bin/%s.

The PORTABLE marker file next to this note tells the application to keep
its profile inside the extracted directory instead of the user home.
`, cfg.AppName, cfg.Version, cfg.AppName, cfg.Executable)
}

// WixSource renders the installer builder source document for the Windows
// installer. Both builder variants accept the same document.
func WixSource(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<Wix xmlns="http://wixtoolset.org/schemas/v4/wxs">` + "\n")
	fmt.Fprintf(&b, "  <Package Name=%q Manufacturer=%q Version=%q UpgradeCode=\"7f9c3a52-1d4e-4b8a-9c2f-0e5d6a7b8c9d\">\n",
		cfg.AppName, cfg.Maintainer, cfg.Version)
	b.WriteString("    <MajorUpgrade DowngradeErrorMessage=\"A newer version is already installed.\"/>\n")
	b.WriteString("    <MediaTemplate EmbedCab=\"yes\"/>\n")
	b.WriteString("    <StandardDirectory Id=\"ProgramFiles64Folder\">\n")
	fmt.Fprintf(&b, "      <Directory Id=\"INSTALLFOLDER\" Name=%q>\n", cfg.AppName)
	b.WriteString("        <Component Id=\"MainExecutable\">\n")
	fmt.Fprintf(&b, "          <File Id=\"AppBinary\" Source=%q KeyPath=\"yes\"/>\n", cfg.Executable+".exe")
	b.WriteString("        </Component>\n")
	b.WriteString("      </Directory>\n")
	b.WriteString("    </StandardDirectory>\n")
	b.WriteString("    <Feature Id=\"Main\" Level=\"1\">\n")
	b.WriteString("      <ComponentRef Id=\"MainExecutable\"/>\n")
	b.WriteString("    </Feature>\n")
	b.WriteString("  </Package>\n")
	b.WriteString("</Wix>\n")

	return b.String()
}

// DebCopyright renders the Debian copyright file.
func DebCopyright(cfg *config.Config) string {
	return fmt.Sprintf(`Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/
Upstream-Name: %s
Source: %s

Files: *
Copyright: %d %s
License: %s
`, cfg.PackageName(), cfg.Homepage, time.Now().Year(), cfg.Maintainer, cfg.License)
}

// xmlEscape escapes the five XML special characters.
func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)

	return replacer.Replace(s)
}
