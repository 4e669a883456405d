package importer

import (
	"github.com/dustin/go-humanize"
	"github.com/lakshyashishir/appinventor-sources/pkg/config"
)

// Limits caps the size of each kind of upload, in bytes.
type Limits struct {
	Project     int64
	File        int64
	UserFile    int64
	TempFile    int64
	GlobalAsset int64
}

func DefaultLimits() Limits {
	return Limits{
		Project:     30 * humanize.MByte,
		File:        10 * humanize.MByte,
		UserFile:    1 * humanize.MByte,
		TempFile:    10 * humanize.MByte,
		GlobalAsset: 10 * humanize.MByte,
	}
}

// LimitsFromConfig reads sizes such as "30MB" from cfg, falling back to DefaultLimits.
func LimitsFromConfig(cfg config.Configer) Limits {
	d := DefaultLimits()
	return Limits{
		Project:     int64(cfg.GetBytesKeyWithDefault("ODE_MAX_PROJECT_SIZE", uint64(d.Project))),
		File:        int64(cfg.GetBytesKeyWithDefault("ODE_MAX_FILE_SIZE", uint64(d.File))),
		UserFile:    int64(cfg.GetBytesKeyWithDefault("ODE_MAX_USERFILE_SIZE", uint64(d.UserFile))),
		TempFile:    int64(cfg.GetBytesKeyWithDefault("ODE_MAX_COMPONENT_SIZE", uint64(d.TempFile))),
		GlobalAsset: int64(cfg.GetBytesKeyWithDefault("ODE_MAX_ASSET_SIZE", uint64(d.GlobalAsset))),
	}
}
