package tracer

import "fmt"

// Identity of this recorder as seen by version queries.
const (
	VendorID   uint16 = 43
	ModuleID   uint16 = 15
	InstanceID uint8  = 0

	SWMajor uint8 = 1
	SWMinor uint8 = 0
	SWPatch uint8 = 0
)

// Info describes the recorder's vendor, module and software version.
type Info struct {
	Vendor   uint16
	Module   uint16
	Instance uint8
	Major    uint8
	Minor    uint8
	Patch    uint8
}

func (i Info) String() string {
	return fmt.Sprintf("vendor %d module %d instance %d v%d.%d.%d",
		i.Vendor, i.Module, i.Instance, i.Major, i.Minor, i.Patch)
}

// VersionInfo works in every lifecycle state.
func (t *Tracer) VersionInfo() Info {
	return versionInfo()
}

func versionInfo() Info {
	return Info{
		Vendor:   VendorID,
		Module:   ModuleID,
		Instance: InstanceID,
		Major:    SWMajor,
		Minor:    SWMinor,
		Patch:    SWPatch,
	}
}
