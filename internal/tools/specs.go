package tools

// Logical tool names known to the locator.
const (
	// ToolCompiler is the native compiler toolchain building the application.
	ToolCompiler = "cargo"
	// ToolLipo merges per-architecture binaries into one universal binary.
	ToolLipo = "lipo"
	// ToolHdiutil creates macOS disk images.
	ToolHdiutil = "hdiutil"
	// ToolCodesign signs macOS bundles and binaries.
	ToolCodesign = "codesign"
	// ToolXcrun runs notarytool and stapler on macOS.
	ToolXcrun = "xcrun"
	// ToolSigntool signs Windows executables and installers.
	ToolSigntool = "signtool"
	// ToolWix builds Windows installers; variant wix4 is one-step,
	// variant wix3 compiles an object file with candle and links with light.
	ToolWix = "wix"
	// ToolDpkgDeb builds Debian packages.
	ToolDpkgDeb = "dpkg-deb"
	// ToolAppImage packs an AppDir into a self-contained AppImage.
	ToolAppImage = "appimagetool"
)

// Variant tags for the installer builder.
const (
	// VariantWix4 is the modern single-binary WiX toolset.
	VariantWix4 = "wix4"
	// VariantWix3 is the legacy candle/light WiX toolset.
	VariantWix3 = "wix3"
)

// defaultCandidates lists where each tool is probed for, in priority order:
// well-known absolute install paths (newest variant first), then the command
// search path.
//
//nolint:gochecknoglobals // Static lookup table.
var defaultCandidates = map[string][]Candidate{
	ToolCompiler: {
		{Path: "/usr/local/bin/cargo"},
		{Path: "cargo"},
	},
	ToolLipo:     {{Path: "/usr/bin/lipo"}, {Path: "lipo"}},
	ToolHdiutil:  {{Path: "/usr/bin/hdiutil"}, {Path: "hdiutil"}},
	ToolCodesign: {{Path: "/usr/bin/codesign"}, {Path: "codesign"}},
	ToolXcrun:    {{Path: "/usr/bin/xcrun"}, {Path: "xcrun"}},
	ToolSigntool: {
		{Path: `C:\Program Files (x86)\Windows Kits\10\bin\x64\signtool.exe`},
		{Path: "signtool"},
	},
	ToolWix: {
		{Path: `C:\Program Files\WiX Toolset v4\bin\wix.exe`, Variant: VariantWix4},
		{Path: "wix", Variant: VariantWix4},
		{Path: `C:\Program Files (x86)\WiX Toolset v3.14\bin\candle.exe`, Variant: VariantWix3},
		{Path: `C:\Program Files (x86)\WiX Toolset v3.11\bin\candle.exe`, Variant: VariantWix3},
		{Path: "candle", Variant: VariantWix3},
	},
	ToolDpkgDeb: {
		{Path: "/usr/bin/dpkg-deb"},
		{Path: "dpkg-deb"},
	},
	ToolAppImage: {
		{Path: "/usr/local/bin/appimagetool"},
		{Path: "appimagetool"},
	},
}
