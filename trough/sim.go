package trough

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/kibron/mtxserver/logger"
)

// Physical model of the simulated instrument. The numbers are plausible for a
// MicrotroughXS-class film balance; nothing in the server core depends on them.
const (
	simTrackLength = 400.0   // barrier travel, mm
	simMaxArea     = 24000.0 // film area with barriers fully open, mm^2
	simMinArea     = 2000.0  // film area with barriers fully closed, mm^2
	simMaxSpeed    = 170.0   // barrier speed limit, mm/min

	// simMaxAreaPerChains is the MaxAreaPerChains calibration value,
	// Angstrom^2 per chain at full opening.
	simMaxAreaPerChains = 120.0

	// simMaxPendingSamples caps the sample backlog GetData reports in one
	// response, so a long-idle measurement cannot produce an unbounded burst.
	simMaxPendingSamples = 25
)

type capabilityFunc func(s *Simulator, args []string) ([]string, error)

// Simulator is an in-process Provider implementing the documented capability
// set of the trough driver with a simple kinematic barrier model.
//
// It backs the server binary when no hardware is attached and serves as the
// provider in integration tests. All methods are safe for concurrent use.
type Simulator struct {
	logger logger.Logger

	calls   *xsync.MapOf[string, capabilityFunc]
	getters *xsync.MapOf[string, func(s *Simulator) string]
	setters *xsync.MapOf[string, func(s *Simulator, value string) error]

	// now is the sample clock, replaceable in tests.
	now func() time.Time

	mu sync.Mutex
	st simState
}

// simState holds the mutable instrument model, guarded by Simulator.mu.
type simState struct {
	position  float64 // barrier position from fully open, mm
	speed     float64 // barrier speed, mm/min
	stepping  int     // StpCompress, StpRelax or StpStop
	mode      MeasureMode
	targetAPC float64 // target area per chains, 0 when unset
	atTarget  bool

	measuring     bool
	storeInterval float64 // seconds between measurement samples
	measureStart  time.Time
	lastSample    time.Time

	comPort   int
	lastError int

	lastUpdate time.Time
}

var _ Provider = (*Simulator)(nil)

// NewSimulator creates a simulated trough with barriers fully open and the
// instrument idle.
func NewSimulator(l logger.Logger) *Simulator {
	if l == nil {
		l = logger.GetLogger()
	}

	sim := &Simulator{
		logger:  l,
		calls:   xsync.NewMapOf[string, capabilityFunc](),
		getters: xsync.NewMapOf[string, func(s *Simulator) string](),
		setters: xsync.NewMapOf[string, func(s *Simulator, value string) error](),
		now:     time.Now,
	}
	sim.st = simState{
		speed:      simMaxSpeed / 2,
		mode:       MeIdle,
		comPort:    1,
		lastUpdate: sim.now(),
	}

	sim.registerCapabilities()
	sim.registerProperties()

	return sim
}

// Call invokes the named capability. Unknown names fail with the documented
// CallError(-100, 'Unrecognised command name', ...) descriptor.
func (sim *Simulator) Call(_ context.Context, name string, args []string) ([]string, error) {
	fn, ok := sim.calls.Load(name)
	if !ok {
		sim.logger.Debug("unrecognised capability", "name", name)
		return nil, Unrecognised(name)
	}

	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.advance()

	return fn(sim, args)
}

// GetProperty reads a named property as a single token.
func (sim *Simulator) GetProperty(_ context.Context, name string) (string, error) {
	get, ok := sim.getters.Load(name)
	if !ok {
		return "", NewCallError(CodeUnknownProperty, "Unrecognised property name", OriginPrefix+name)
	}

	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.advance()

	return get(sim), nil
}

// SetProperty writes a named property.
func (sim *Simulator) SetProperty(_ context.Context, name string, value string) error {
	set, ok := sim.setters.Load(name)
	if !ok {
		if _, readable := sim.getters.Load(name); readable {
			return NewCallError(CodeInvalidArgument, "Property is read-only", OriginPrefix+name)
		}
		return NewCallError(CodeUnknownProperty, "Unrecognised property name", OriginPrefix+name)
	}

	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.advance()

	return set(sim, value)
}

func (sim *Simulator) registerCapabilities() {
	sim.calls.Store("DeviceIdentification", func(s *Simulator, _ []string) ([]string, error) {
		return []string{statusToken(NoError), "MicrotroughXS", "1021", "1.82"}, nil
	})

	sim.calls.Store("GetData", func(s *Simulator, _ []string) ([]string, error) {
		return s.measurementRecord(), nil
	})

	sim.calls.Store("GetMaxBarrierSpeed", func(s *Simulator, _ []string) ([]string, error) {
		return []string{statusToken(NoError), floatToken(simMaxSpeed)}, nil
	})

	sim.calls.Store("SetBarrierSpeed", func(s *Simulator, args []string) ([]string, error) {
		speed, err := floatArg("SetBarrierSpeed", args, 0)
		if err != nil {
			return nil, err
		}
		if speed <= 0 || speed > simMaxSpeed {
			return nil, NewCallError(CodeInvalidArgument, "Barrier speed out of range", OriginPrefix+"SetBarrierSpeed")
		}
		s.st.speed = speed

		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("StepCompress", func(s *Simulator, _ []string) ([]string, error) {
		s.st.stepping = StpCompress
		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("StepRelax", func(s *Simulator, _ []string) ([]string, error) {
		s.st.stepping = StpRelax
		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("StepStop", func(s *Simulator, _ []string) ([]string, error) {
		s.st.stepping = StpStop
		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("NewMeasureMode", func(s *Simulator, args []string) ([]string, error) {
		mode, err := intArg("NewMeasureMode", args, 0)
		if err != nil {
			return nil, err
		}
		if mode < int(MeIdle) || mode > int(MeHysteresis) {
			return nil, NewCallError(CodeInvalidArgument, "Unknown measurement mode", OriginPrefix+"NewMeasureMode")
		}
		s.st.mode = MeasureMode(mode)
		s.st.atTarget = false

		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("StartMeasure", func(s *Simulator, _ []string) ([]string, error) {
		now := s.now()
		s.st.measuring = true
		s.st.measureStart = now
		s.st.lastSample = now

		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("StopMeasure", func(s *Simulator, _ []string) ([]string, error) {
		s.st.measuring = false
		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("SetStoreInterval", func(s *Simulator, args []string) ([]string, error) {
		interval, err := floatArg("SetStoreInterval", args, 0)
		if err != nil {
			return nil, err
		}
		if interval <= 0 {
			return nil, NewCallError(CodeInvalidArgument, "Store interval must be positive", OriginPrefix+"SetStoreInterval")
		}
		s.st.storeInterval = interval

		return []string{statusToken(NoError)}, nil
	})

	sim.calls.Store("MaxAreaPerChains", func(s *Simulator, _ []string) ([]string, error) {
		return []string{statusToken(NoError), floatToken(simMaxAreaPerChains)}, nil
	})

	sim.calls.Store("SetTargetAreaPerChains", func(s *Simulator, args []string) ([]string, error) {
		target, err := floatArg("SetTargetAreaPerChains", args, 0)
		if err != nil {
			return nil, err
		}
		if target <= 0 || target > simMaxAreaPerChains {
			return nil, NewCallError(CodeInvalidArgument, "Target area out of range", OriginPrefix+"SetTargetAreaPerChains")
		}
		s.st.targetAPC = target
		s.st.atTarget = false

		return []string{statusToken(NoError)}, nil
	})
}

func (sim *Simulator) registerProperties() {
	sim.getters.Store("CurrentSpeed", func(s *Simulator) string {
		return floatToken(s.st.speed)
	})
	sim.getters.Store("CurrentPosition", func(s *Simulator) string {
		return floatToken(s.st.position)
	})
	sim.getters.Store("CompressionRate", func(s *Simulator) string {
		return floatToken(s.compressionRate())
	})
	sim.getters.Store("CommandStatus", func(s *Simulator) string {
		return strconv.Itoa(int(s.deviceStatus()))
	})
	sim.getters.Store("ComPort", func(s *Simulator) string {
		return strconv.Itoa(s.st.comPort)
	})

	sim.setters.Store("ComPort", func(s *Simulator, value string) error {
		port, err := strconv.Atoi(value)
		if err != nil || port < 1 {
			return NewCallError(CodeInvalidArgument, "Invalid com port", OriginPrefix+"ComPort")
		}
		s.st.comPort = port

		return nil
	})
}

// advance moves the barrier model forward to the current time.
// Callers must hold sim.mu.
func (sim *Simulator) advance() {
	now := sim.now()
	dt := now.Sub(sim.st.lastUpdate).Minutes()
	sim.st.lastUpdate = now
	if dt <= 0 {
		return
	}

	st := &sim.st

	// Constant-area mode drives the barriers toward the target on its own.
	if st.mode == MeConstantArea && st.measuring && st.targetAPC > 0 && !st.atTarget {
		target := positionForAreaPerChains(st.targetAPC)
		step := st.speed * dt
		switch {
		case st.position < target:
			st.position = min(st.position+step, target)
		case st.position > target:
			st.position = max(st.position-step, target)
		}
		if st.position == target {
			st.atTarget = true
		}

		return
	}

	if st.stepping == StpStop {
		return
	}

	st.position += float64(st.stepping) * st.speed * dt
	if st.position <= 0 {
		st.position = 0
		st.stepping = StpStop // barriers stop at full extent
	}
	if st.position >= simTrackLength {
		st.position = simTrackLength
		st.stepping = StpStop
	}
}

// measurementRecord builds the GetData response: the pending sample count
// followed by the 22 measurement fields. Callers must hold sim.mu.
func (sim *Simulator) measurementRecord() []string {
	st := &sim.st

	pending := 0
	if st.measuring && st.storeInterval > 0 {
		interval := time.Duration(st.storeInterval * float64(time.Second))
		for !sim.now().Before(st.lastSample.Add(interval)) && pending < simMaxPendingSamples {
			st.lastSample = st.lastSample.Add(interval)
			pending++
		}
	}

	area := sim.area()
	elapsed := 0.0
	if st.measuring {
		elapsed = sim.now().Sub(st.measureStart).Seconds()
	}

	fields := make([]string, 0, DataFieldCount+1)
	fields = append(fields, strconv.Itoa(pending))

	for i := 0; i < DataFieldCount; i++ {
		switch i {
		case DataStatus:
			fields = append(fields, statusToken(NoError))
		case DataPressure:
			// surface pressure rises as the film compresses
			fields = append(fields, floatToken(72.8*(1-area/simMaxArea)))
		case DataTension:
			fields = append(fields, floatToken(72.8*area/simMaxArea))
		case DataArea:
			fields = append(fields, floatToken(area))
		case DataAreaPerChains:
			fields = append(fields, floatToken(area*simMaxAreaPerChains/simMaxArea))
		case DataTemperature1, DataTemperature2:
			fields = append(fields, floatToken(22.5))
		case DataPosition:
			fields = append(fields, floatToken(st.position))
		case DataSpeed:
			fields = append(fields, floatToken(st.speed))
		case DataCompressionRate:
			fields = append(fields, floatToken(sim.compressionRate()))
		case DataTime:
			fields = append(fields, floatToken(elapsed))
		case DataSteppingStatus:
			fields = append(fields, strconv.Itoa(st.stepping))
		case DataDeviceStatus:
			fields = append(fields, strconv.Itoa(int(sim.deviceStatus())))
		case DataLastError:
			fields = append(fields, strconv.Itoa(st.lastError))
		default:
			fields = append(fields, floatToken(0))
		}
	}

	return fields
}

// area returns the current film area in mm^2. Callers must hold sim.mu.
func (sim *Simulator) area() float64 {
	return simMaxArea - (simMaxArea-simMinArea)*(sim.st.position/simTrackLength)
}

// compressionRate returns the relative area change per minute at the current
// barrier speed, in percent. Callers must hold sim.mu.
func (sim *Simulator) compressionRate() float64 {
	if sim.st.stepping == StpStop {
		return 0
	}
	return sim.st.speed * (simMaxArea - simMinArea) / simTrackLength / sim.area() * 100
}

// deviceStatus derives the reported device status from the model state.
// Callers must hold sim.mu.
func (sim *Simulator) deviceStatus() DeviceStatus {
	st := &sim.st

	if st.mode == MeConstantArea && st.atTarget {
		return DstTargetReached
	}

	switch st.mode {
	case MeTensiometer:
		return DstTensiometer
	case MeCompressionIsotherm:
		return DstCompressionIsotherm
	case MeConstantArea:
		return DstConstantArea
	case MeConstantPressure:
		return DstConstantPressure
	case MeManual, MeRadioAct, MeHysteresis:
		return DstManual
	default:
		return DstIdle
	}
}

// positionForAreaPerChains inverts the area model for constant-area targeting.
func positionForAreaPerChains(apc float64) float64 {
	area := apc * simMaxArea / simMaxAreaPerChains
	if area > simMaxArea {
		area = simMaxArea
	}
	if area < simMinArea {
		area = simMinArea
	}
	return (simMaxArea - area) / (simMaxArea - simMinArea) * simTrackLength
}

// floatToken formats a measurement value the way the driver does, with eight
// decimal places (e.g. "-4596.47753906").
func floatToken(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

func statusToken(code int) string {
	return strconv.Itoa(code)
}

func floatArg(name string, args []string, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, NewCallError(CodeInvalidArgument, "Missing argument", OriginPrefix+name)
	}
	v, err := strconv.ParseFloat(args[idx], 64)
	if err != nil {
		return 0, NewCallError(CodeInvalidArgument, "Invalid argument", OriginPrefix+name)
	}
	return v, nil
}

func intArg(name string, args []string, idx int) (int, error) {
	if idx >= len(args) {
		return 0, NewCallError(CodeInvalidArgument, "Missing argument", OriginPrefix+name)
	}
	v, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, NewCallError(CodeInvalidArgument, "Invalid argument", OriginPrefix+name)
	}
	return v, nil
}
