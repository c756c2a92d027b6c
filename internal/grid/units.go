package grid

// Fixed-point accessors. Every value is a multiple of 1/Scale().

// Scale returns the fixed-point denominator.
func (m *Model) Scale() int64 { return m.scale }

// Units returns the position of grid index i in fixed-point units.
func (m *Model) Units(i int) int64 { return int64(i) * m.resU }

// TravelUnits returns the distance covered at top speed by time index t,
// which is both the speed-limit bound and the guard displacement.
func (m *Model) TravelUnits(t int) int64 { return int64(t) * m.stepU }

// DelayUnits returns the allowed delay as a distance.
func (m *Model) DelayUnits() int64 { return m.delayU }

// GuardLengthUnits returns the guard vehicle length.
func (m *Model) GuardLengthUnits() int64 { return m.guardLenU }

// VehicleLengthUnits returns the main vehicle length.
func (m *Model) VehicleLengthUnits() int64 { return m.vehicleU }

// VerticalGuardStartUnits returns the time-zero positions of the guards
// travelling along the vertical axis.
func (m *Model) VerticalGuardStartUnits() [2]int64 { return m.vGuardsU }

// HorizontalGuardStartUnits returns the time-zero positions of the guards
// travelling along the horizontal axis.
func (m *Model) HorizontalGuardStartUnits() [2]int64 { return m.hGuardsU }

// LaneUnits returns where lane k starts on the orthogonal axis.
func (m *Model) LaneUnits(k int) int64 { return int64(k) * m.laneU }

// GuardLaneUnits returns where the band checked against guard vehicles
// starts on a vehicle's own axis.
func (m *Model) GuardLaneUnits() int64 { return m.guardLaneU }
