package strategy

// Params holds every threshold and window used by the guard, the rules and
// the aggregator. It is built once at startup and never mutated.
type Params struct {
	// Guard
	MinVolume    float64 // minimum 20-bar average volume value
	MinLiquidity float64
	VolumeWindow int

	// ema_cross
	EMAFast        int
	EMASlow        int
	VolMultConfirm float64

	// boll_breakout
	BollWindow        int
	BollK             float64
	SqueezeLookback   int
	SqueezePercentile float64

	// rsi_reclaim
	RSIWindow int
	RSILevel  float64

	// obv_leads
	OBVLookback int

	// mcap_roc
	ROCWindow    int
	ROCThreshold float64 // percent

	MinSignals int
}

// DefaultParams returns the stock scanner thresholds.
func DefaultParams() Params {
	return Params{
		MinVolume:         3000,
		MinLiquidity:      30000,
		VolumeWindow:      20,
		EMAFast:           9,
		EMASlow:           21,
		VolMultConfirm:    1.5,
		BollWindow:        20,
		BollK:             2,
		SqueezeLookback:   30,
		SqueezePercentile: 20,
		RSIWindow:         14,
		RSILevel:          50,
		OBVLookback:       50,
		ROCWindow:         5,
		ROCThreshold:      5,
		MinSignals:        2,
	}
}
