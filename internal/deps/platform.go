package deps

import "runtime"

// assetName returns the release asset name of a tool for the current
// platform, following the "<name>-<os>-<arch>" convention of standalone CLI
// releases (e.g., tailwindcss-macos-arm64, tailwindcss-windows-x64.exe).
func assetName(name string) string {
	return platformAssetName(name, runtime.GOOS, runtime.GOARCH)
}

func platformAssetName(name, goos, goarch string) string {
	osName := goos
	if goos == "darwin" {
		osName = "macos"
	}

	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	}

	asset := name + "-" + osName + "-" + arch
	if goos == "windows" {
		asset += ".exe"
	}
	return asset
}
