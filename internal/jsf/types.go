package jsf

import (
	"fmt"
	"time"

	"example.com/jsf2segy/internal/endian"
)

const (
	StartOfMessage    = 0x1601
	MessageHeaderSize = 16
	TraceHeaderSize   = 240
)

// Message types. Only MsgSonarData is decoded; the rest are classified and skipped.
const (
	MsgSonarData uint16 = 80
	MsgSidescan  uint16 = 82
	MsgSAS       uint16 = 86
	MsgNMEA      uint16 = 2002
	MsgPitchRoll uint16 = 2020
	MsgAnalog    uint16 = 2040
	MsgPressure  uint16 = 2060
	MsgDoppler   uint16 = 2080
	MsgSituation uint16 = 2090
)

// Subsystem numbers carried in byte 7 of the message header.
const (
	SubsystemSubbottom    uint8 = 0
	SubsystemLowSidescan  uint8 = 20
	SubsystemHighSidescan uint8 = 21
)

// MessageHeader is the 16-byte envelope preceding every JSF message.
type MessageHeader struct {
	Marker    uint16
	Version   uint8
	SessionID uint8
	Type      uint16
	Command   uint8
	Subsystem uint8
	Channel   uint8
	Sequence  uint8
	Size      int32
}

// ParseMessageHeader decodes an envelope. It does not validate the marker.
func ParseMessageHeader(buf []byte) MessageHeader {
	return MessageHeader{
		Marker:    endian.ReadUint16(buf, 0),
		Version:   buf[2],
		SessionID: buf[3],
		Type:      endian.ReadUint16(buf, 4),
		Command:   buf[6],
		Subsystem: buf[7],
		Channel:   buf[8],
		Sequence:  buf[9],
		Size:      endian.ReadInt32(buf, 12),
	}
}

// IsSubbottom reports whether the message carries subbottom sonar data.
func (h MessageHeader) IsSubbottom() bool {
	return h.Type == MsgSonarData && h.Subsystem == SubsystemSubbottom
}

// Kind names the message type for logs.
func (h MessageHeader) Kind() string {
	switch h.Type {
	case MsgSonarData:
		if h.Subsystem == SubsystemSubbottom {
			return "subbottom"
		}
		return "sonar"
	case MsgSidescan:
		return "sidescan"
	case MsgSAS:
		return "sas"
	case MsgNMEA:
		return "nmea"
	case MsgPitchRoll:
		return "pitch-roll"
	case MsgAnalog:
		return "analog"
	case MsgPressure:
		return "pressure"
	case MsgDoppler:
		return "doppler"
	case MsgSituation:
		return "situation"
	default:
		return fmt.Sprintf("type-%d", h.Type)
	}
}

// Byte offsets inside the 240-byte EdgeTech trace header.
const (
	offPingTime        = 0
	offPingNumber      = 8
	offDataFormat      = 34
	offSourceOffset    = 38
	offLongitude       = 80
	offLatitude        = 84
	offSamples         = 114
	offSampleInterval  = 116
	offGainFactor      = 120
	offStartFrequency  = 126
	offEndFrequency    = 128
	offSweepLength     = 130
	offDepth           = 136
	offAltitude        = 144
	offWeightingFactor = 168
	offHour            = 186
	offMinute          = 188
	offSecond          = 190
	offDayOfYear       = 196
	offYear            = 198
)

// TraceHeader is a read-only view over the trace header at the start of a
// sonar data payload. It must be TraceHeaderSize bytes long.
type TraceHeader []byte

// PingTime is the ping time in whole seconds since 1970.
func (h TraceHeader) PingTime() time.Time {
	return time.Unix(int64(endian.ReadInt32(h, offPingTime)), 0).UTC()
}

func (h TraceHeader) PingNumber() uint32 { return endian.ReadUint32(h, offPingNumber) }

// DataFormat is the subbottom sample layout code, see package sample.
func (h TraceHeader) DataFormat() int16 { return endian.ReadInt16(h, offDataFormat) }

func (h TraceHeader) SourceOffset() int16 { return endian.ReadInt16(h, offSourceOffset) }

// Longitude and Latitude are stored as fixed-point values scaled by 1000.
func (h TraceHeader) Longitude() int32 { return endian.ReadInt32(h, offLongitude) }
func (h TraceHeader) Latitude() int32  { return endian.ReadInt32(h, offLatitude) }

func (h TraceHeader) Samples() uint16 { return endian.ReadUint16(h, offSamples) }

// SampleIntervalNs is the digitizer sample interval in nanoseconds.
func (h TraceHeader) SampleIntervalNs() int32 { return endian.ReadInt32(h, offSampleInterval) }

func (h TraceHeader) GainFactor() int16 { return endian.ReadInt16(h, offGainFactor) }

// StartFrequency and EndFrequency are in units of 10 Hz.
func (h TraceHeader) StartFrequency() int16 { return endian.ReadInt16(h, offStartFrequency) }
func (h TraceHeader) EndFrequency() int16   { return endian.ReadInt16(h, offEndFrequency) }

// SweepLength is in milliseconds.
func (h TraceHeader) SweepLength() int16 { return endian.ReadInt16(h, offSweepLength) }

// Depth and Altitude are in millimeters.
func (h TraceHeader) Depth() int32    { return endian.ReadInt32(h, offDepth) }
func (h TraceHeader) Altitude() int32 { return endian.ReadInt32(h, offAltitude) }

// WeightingFactor is stored with the opposite sign of the scaling exponent.
func (h TraceHeader) WeightingFactor() int16 { return endian.ReadInt16(h, offWeightingFactor) }

// Timestamp returns the recording time fields of the header.
func (h TraceHeader) Timestamp() Timestamp {
	return Timestamp{
		Year:   int(endian.ReadInt16(h, offYear)),
		Day:    int(endian.ReadInt16(h, offDayOfYear)),
		Hour:   int(endian.ReadInt16(h, offHour)),
		Minute: int(endian.ReadInt16(h, offMinute)),
		Second: int(endian.ReadInt16(h, offSecond)),
	}
}

// Timestamp is a year, day-of-year and time-of-day triple as carried by JSF.
type Timestamp struct {
	Year   int `json:"year"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%d:%d:%d:%d:%d", t.Year, t.Day, t.Hour, t.Minute, t.Second)
}

// Time converts the timestamp to UTC. Day 1 is January 1st.
func (t Timestamp) Time() time.Time {
	return time.Date(t.Year, time.January, 1, t.Hour, t.Minute, t.Second, 0, time.UTC).AddDate(0, 0, t.Day-1)
}
