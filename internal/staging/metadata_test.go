package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cheesejaguar/oxide-release/internal/config"
)

// TestDesktopEntry checks sections, lists and the sub-action.
func TestDesktopEntry(t *testing.T) {
	t.Parallel()

	entry := DesktopEntry(config.Default())

	require.True(t, strings.HasPrefix(entry, "[Desktop Entry]\n"))
	require.Contains(t, entry, "Name=Oxide Browser\n")
	require.Contains(t, entry, "Categories=Network;WebBrowser;\n")
	require.Contains(t, entry, "MimeType=text/html;")
	require.Contains(t, entry, "[Desktop Action new-window]")
}

// TestDebianControl checks required keys and the computed installed size.
func TestDebianControl(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	control := DebianControl(cfg, "amd64", 51200)

	require.Contains(t, control, "Package: oxide-browser\n")
	require.Contains(t, control, "Version: "+cfg.Version+"\n")
	require.Contains(t, control, "Architecture: amd64\n")
	require.Contains(t, control, "Installed-Size: 51200\n")
	require.Contains(t, control, "Depends: ")
	require.Contains(t, control, "Maintainer: "+cfg.Maintainer+"\n")
}

// TestMetainfoXML checks the identifier, license and release history.
func TestMetainfoXML(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	doc := MetainfoXML(cfg)

	require.Contains(t, doc, "<id>"+cfg.Identifier+"</id>")
	require.Contains(t, doc, "<project_license>"+cfg.License+"</project_license>")
	require.Contains(t, doc, `<release version="`+cfg.Version+`"`)
}

// TestUpdatePlistFields rewrites identifier and version in place and leaves
// the rest of the document untouched.
func TestUpdatePlistFields(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "Info.plist")
	require.NoError(t, os.WriteFile(path, []byte(InfoPlist(cfg)), 0o644))

	require.NoError(t, UpdatePlistFields(path, "com.example.rewritten", "4.5.6"))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	doc := string(contents)
	require.Contains(t, doc, "<string>com.example.rewritten</string>")
	require.Contains(t, doc, "<string>4.5.6</string>")
	require.NotContains(t, doc, "PLACEHOLDER")
	require.Contains(t, doc, "<string>APPL</string>")
}

// TestMaintainerScripts ensures hooks are shell scripts and cache refreshes
// stay best-effort on systems without the cache tools.
func TestMaintainerScripts(t *testing.T) {
	t.Parallel()

	scripts := MaintainerScripts(config.Default())

	require.Len(t, scripts, 3)

	for _, name := range []string{"postinst", "prerm", "postrm"} {
		require.True(t, strings.HasPrefix(scripts[name], "#!/bin/sh\n"), name)
	}

	require.Contains(t, scripts["postinst"], "update-desktop-database")
	require.Contains(t, scripts["postinst"], "gtk-update-icon-cache")
	require.Contains(t, scripts["postinst"], "update-mime-database")
	require.Contains(t, scripts["postinst"], "command -v")
	require.Contains(t, scripts["postinst"], "|| true")

	// The MIME cache refresh tracks whether the entry registers MIME types.
	plain := config.Default()
	plain.MimeTypes = nil
	require.NotContains(t, MaintainerScripts(plain)["postinst"], "update-mime-database")
}

// TestAppRunScript resolves everything relative to the launcher location.
func TestAppRunScript(t *testing.T) {
	t.Parallel()

	script := AppRunScript(config.Default())

	require.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
	require.Contains(t, script, `HERE="$(dirname "$(readlink -f "$0")")"`)
	require.Contains(t, script, `LD_LIBRARY_PATH="$HERE/usr/lib`)
	require.Contains(t, script, `exec "$HERE/usr/bin/oxide-browser" "$@"`)
}

// TestWixSource embeds the version and binary reference.
func TestWixSource(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	doc := WixSource(cfg)

	require.Contains(t, doc, `Version="`+cfg.Version+`"`)
	require.Contains(t, doc, `Source="oxide-browser.exe"`)
}
