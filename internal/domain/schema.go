package domain

// ChannelSpec describes one predictor channel: either a direct selection of a
// pressure-level field or the derived IVT magnitude.
type ChannelSpec struct {
	Name  string
	Field string  // ERA5 short name; empty for the derived ivt channel
	Level float64 // pressure level in hPa; 0 for single-level fields
}

// Derived reports whether the channel is computed rather than selected.
func (c ChannelSpec) Derived() bool { return c.Field == "" }

// Channels is the fixed predictor schema. The order is part of the on-disk
// contract: stacked tensors and normalization stats follow it positionally.
// Not configurable at runtime.
var Channels = []ChannelSpec{
	{Name: "ivt"},
	{Name: "t_500", Field: "t", Level: 500},
	{Name: "t_850", Field: "t", Level: 850},
	{Name: "rh_700", Field: "r", Level: 700},
	{Name: "w_500", Field: "w", Level: 500},
}

// IVT magnitude component fields (vertical integrals of eastward and
// northward water vapour flux).
const (
	IVTEastField  = "viwve"
	IVTNorthField = "viwvn"
)

// TargetField is the satellite brightness temperature variable name.
const TargetField = "tbb"

// ChannelNames returns the ordered channel names of the schema.
func ChannelNames() []string {
	names := make([]string, len(Channels))
	for i, c := range Channels {
		names[i] = c.Name
	}
	return names
}
