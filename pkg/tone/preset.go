package tone

// Catalog ids of the synthesized tones shared with the Master node.
const (
	LowBeepID     uint16 = 5001
	MidBeepID     uint16 = 5002
	HighBeepID    uint16 = 5003
	SweepUpID     uint16 = 5101
	SweepDownID   uint16 = 5102
	SirenSlowID   uint16 = 5103
	BurstShortID  uint16 = 5201
	BurstLongID   uint16 = 5202
	DoubleClickID uint16 = 5301
	TripleBeepID  uint16 = 5302
)

var presets = map[uint16]Params{
	LowBeepID:     {Kind: Constant, F1: 330},
	MidBeepID:     {Kind: Constant, F1: 660},
	HighBeepID:    {Kind: Constant, F1: 1320},
	SweepUpID:     {Kind: SweepUp, F1: 400, F2: 1600},
	SweepDownID:   {Kind: SweepDown, F1: 400, F2: 1600},
	SirenSlowID:   {Kind: Siren, F1: 500, F2: 900},
	BurstShortID:  {Kind: Noise, On: 0.1},
	BurstLongID:   {Kind: Noise, On: 0.4},
	DoubleClickID: {Kind: DoubleClick, F1: 2000},
	TripleBeepID:  {Kind: TripleBeep, F1: 1000},
}

// Preset returns the tone registered for a catalog id.
func Preset(id uint16) (Params, bool) {
	p, ok := presets[id]
	return p, ok
}
