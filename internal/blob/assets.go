package blob

import (
	"net/url"
	"os"
	"path/filepath"
)

// AssetResolver resolves bundled mock image names ("landscape1.png") against
// a local assets directory, the stand-in for the application bundle.
type AssetResolver struct {
	dir string
}

func NewAssetResolver(dir string) *AssetResolver {
	return &AssetResolver{dir: dir}
}

// Resolve returns a file URL for the named asset, or an empty string when
// the asset does not exist. The lookup is synchronous and local.
func (r *AssetResolver) Resolve(name string) string {
	// refuse names that escape the assets dir
	if filepath.Base(name) != name {
		return ""
	}

	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: abs}).String()
}
