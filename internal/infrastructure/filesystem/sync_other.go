//go:build !unix

package filesystem

// Directory sync is not available outside unix; the rename is still atomic.
func isUnsupportedSync(error) bool {
	return true
}
