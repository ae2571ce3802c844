// internal/rfd77402/registers.go
package rfd77402

import "time"

// Address is the default 7-bit bus address.
const Address = 0x4C

// Bus speeds supported by the chip.
const (
	SpeedStandard = 100000
	SpeedFast     = 400000
)

// ---- REGISTER MAP ----

const (
	RegICSR              uint8 = 0x00
	RegInterrupts        uint8 = 0x02
	RegCommand           uint8 = 0x04
	RegDeviceStatus      uint8 = 0x06
	RegResult            uint8 = 0x08
	RegResultConfidence  uint8 = 0x0A
	RegConfigureA        uint8 = 0x0C
	RegConfigureB        uint8 = 0x0E
	RegHostToMCPUMailbox uint8 = 0x10
	RegMCPUToHostMailbox uint8 = 0x12
	RegConfigurePMU      uint8 = 0x14
	RegConfigureI2C      uint8 = 0x1C
	RegConfigureHW0      uint8 = 0x20
	RegConfigureHW1      uint8 = 0x22
	RegConfigureHW2      uint8 = 0x24
	RegConfigureHW3      uint8 = 0x26
	RegModChipID         uint8 = 0x28
)

// ---- COMMANDS ----

const (
	// cmdValid marks a command byte as valid; the low bits select the mode.
	cmdValid uint8 = 0x80

	CmdMeasure = cmdValid | uint8(ModeMeasurement) // 0x81
	CmdStandby = cmdValid | uint8(ModeStandby)     // 0x90
	CmdOff     = cmdValid | uint8(ModeOff)         // 0x91
	CmdOn      = cmdValid | uint8(ModeOn)          // 0x92

	CmdReset uint8 = 1 << 6

	// MailboxCalibration asks the MCPU for its calibration payload.
	MailboxCalibration uint16 = 0x0006
)

// ---- STATUS ----

const (
	statusModeMask uint16 = 0x001F

	StatusStandby uint16 = 0x00
	StatusOff     uint16 = 0x10
	StatusOn      uint16 = 0x18

	// ICSR bits
	ICSRDataReady uint8 = 1 << 4
	ICSRMailbox   uint8 = 1 << 5

	MinChipID uint16 = 0xAD00
)

// ICSR / INTERRUPTS setup for the interrupt pad.
const (
	icsrWritableMask uint8 = 0xF0

	IntClearOnResult uint8 = 1      // result register read clears the interrupt
	IntClearOnRead   uint8 = 0 << 1 // clear upon register read
	IntPushPull      uint8 = 1 << 2
	IntActiveLow     uint8 = 0 << 3

	IntSrcData    uint8 = 1
	IntSrcMailbox uint8 = 1 << 1
)

// ---- VENDOR INIT VALUES ----

const (
	i2cInterfaceConfig uint8 = 0x65 // address increment, auto increment, host + MCPU debug

	PMUPatchEnable uint16 = 0x0500 // patch code id + patch memory enable
	PMUMCPUInit    uint16 = 0x0600 // MCPU init state + patch memory enable

	DefaultPeak      uint8 = 0x0E
	DefaultThreshold uint8 = 0x01

	configureBDefault uint16 = 0x10FF // valid pixel, MSP430 default
	hw0Default        uint16 = 0x07D0 // saturation threshold 2000
	hw1Default        uint16 = 0x5008 // frequency 5, low level threshold 8
	hw2Default        uint16 = 0xA041 // integration time 4.34ms
	hw3Default        uint16 = 0x45D4 // harmonic cancellation, auto integration time
)

// ---- TIMING ----

const (
	PollAttempts    = 9
	MailboxAttempts = 10
	PollInterval    = 10 * time.Millisecond
	ResetSettle     = 100 * time.Millisecond

	// CalibrationMessages is the number of mailbox words in the payload.
	CalibrationMessages = 27
	CalibrationSize     = 2 * CalibrationMessages

	// maxStaleMessages bounds the pending-mailbox drain.
	maxStaleMessages = 27
)
