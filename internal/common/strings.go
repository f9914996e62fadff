package common

import "path"

// UnknownStr is rendered for enum values without a name.
const UnknownStr = "unknown"

// PkgAlias returns the default import name of a package path, "" for none.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}
