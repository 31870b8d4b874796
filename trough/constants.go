package trough

import "fmt"

// Indices into the measurement record returned by the GetData capability.
// The record is the status count followed by these 22 fields.
const (
	DataStatus = iota
	DataVoltage
	DataPressure
	DataTension
	DataArea
	DataAreaPerChains
	DataTemperature1
	DataTemperature2
	DataPotential
	DataRadioactivity
	DataAux1
	DataAux2
	DataAux3
	DataPosition
	DataSpeed
	DataCompressionRate
	DataTime
	DataDipPosition
	DataDipSpeed
	DataSteppingStatus
	DataDeviceStatus
	DataLastError

	// DataFieldCount is the number of fields in one measurement record.
	DataFieldCount = DataLastError + 1
)

// DeviceStatus is the value at DataDeviceStatus in a GetData record, and the
// value of the CommandStatus property.
type DeviceStatus int

const (
	DstIdle DeviceStatus = iota
	DstTensiometer
	DstCompressionIsotherm
	DstConstantArea
	DstConstantPressure
	DstManual
	DstTargetReached
	DstBarrierInit
	DstBarrierInitDone
)

var dstStrings = []string{
	"Idle",
	"Tensiometer",
	"CompressionIsotherm",
	"ConstantArea",
	"ConstantPressure",
	"Manual",
	"TargetReached",
	"BarrierInit",
	"BarrierInitDone",
}

// String returns the documented name of the device status value.
func (ds DeviceStatus) String() string {
	if ds < 0 || int(ds) >= len(dstStrings) {
		return fmt.Sprintf("Invalid device status value: %d", int(ds))
	}
	return dstStrings[ds]
}

// Barrier stepping direction codes, the value at DataSteppingStatus.
const (
	StpCompress = 1
	StpRelax    = -1
	StpStop     = 0
)

// Driver error codes, the value at DataLastError in a GetData record and the
// status code (first token) of any command result.
const (
	NoError                = 0  // no error
	EBusy                  = -1 // device is busy, executing a command
	ECommandNotImplemented = -2 // command not implemented
	ECommunicationFailure  = -3 // device did not send reply in time
	EConnectFailure        = -4 // can't connect to device
	EConnected             = -5 // communication port is active
	EComPortNotSet         = -6 // com port number is not set
	ENotConnected          = -7 // not connected to communication port
	EComPortCfgSaveFailure = -8 // could not save communication port information
	ENoServerConnection    = -9 // COM server not connected
)

// MeasureMode is the parameter to the NewMeasureMode capability.
type MeasureMode int

const (
	MeIdle MeasureMode = iota
	MeTensiometer
	MeCompressionIsotherm
	MeConstantArea
	MeConstantPressure
	MeManual
	MeRadioAct
	MeHysteresis
)
