package storage

import (
	"fmt"

	"github.com/shashiranjanraj/kuman/config"
)

// Open returns the named disk built from config. Use the driver names
// "local" or "s3".
func Open(name string) (Disk, error) {
	switch name {
	case "", "local":
		return NewLocal(config.StorageLocalRoot()), nil
	case "s3":
		return newS3Disk()
	default:
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
}
