package fs

import "github.com/sixletters/simplefs/ondisk"

// Unmount releases fs's bitmap, detaches its device, and clears the
// device's mounted flag. It is a no-op if fs is not mounted and performs no
// disk I/O.
func Unmount(fs *FileSystem) {
	if fs == nil || !fs.Mounted() {
		return
	}
	fs.device.Mounted = false
	fs.device = nil
	fs.bitmap = nil
	fs.meta = ondisk.Superblock{}
}
