package jsf

import "example.com/jsf2segy/internal/endian"

// TraceHeaderFields are the trace header values read through TraceHeader.
type TraceHeaderFields struct {
	PingTime         int32
	PingNumber       uint32
	DataFormat       int16
	SourceOffset     int16
	Longitude        int32
	Latitude         int32
	Samples          uint16
	SampleIntervalNs int32
	GainFactor       int16
	StartFrequency   int16
	EndFrequency     int16
	SweepLength      int16
	Depth            int32
	Altitude         int32
	WeightingFactor  int16
	Timestamp        Timestamp
}

// BuildTraceHeader encodes f into a fresh TraceHeaderSize buffer.
func BuildTraceHeader(f TraceHeaderFields) TraceHeader {
	b := make([]byte, TraceHeaderSize)
	o := endian.Source
	o.PutUint32(b[offPingTime:], uint32(f.PingTime))
	o.PutUint32(b[offPingNumber:], f.PingNumber)
	o.PutUint16(b[offDataFormat:], uint16(f.DataFormat))
	o.PutUint16(b[offSourceOffset:], uint16(f.SourceOffset))
	o.PutUint32(b[offLongitude:], uint32(f.Longitude))
	o.PutUint32(b[offLatitude:], uint32(f.Latitude))
	o.PutUint16(b[offSamples:], f.Samples)
	o.PutUint32(b[offSampleInterval:], uint32(f.SampleIntervalNs))
	o.PutUint16(b[offGainFactor:], uint16(f.GainFactor))
	o.PutUint16(b[offStartFrequency:], uint16(f.StartFrequency))
	o.PutUint16(b[offEndFrequency:], uint16(f.EndFrequency))
	o.PutUint16(b[offSweepLength:], uint16(f.SweepLength))
	o.PutUint32(b[offDepth:], uint32(f.Depth))
	o.PutUint32(b[offAltitude:], uint32(f.Altitude))
	o.PutUint16(b[offWeightingFactor:], uint16(f.WeightingFactor))
	o.PutUint16(b[offHour:], uint16(f.Timestamp.Hour))
	o.PutUint16(b[offMinute:], uint16(f.Timestamp.Minute))
	o.PutUint16(b[offSecond:], uint16(f.Timestamp.Second))
	o.PutUint16(b[offDayOfYear:], uint16(f.Timestamp.Day))
	o.PutUint16(b[offYear:], uint16(f.Timestamp.Year))
	return b
}

// BuildMessage frames payload behind a message header. The marker and size
// fields are always filled in from the payload.
func BuildMessage(hdr MessageHeader, payload []byte) []byte {
	msg := make([]byte, MessageHeaderSize+len(payload))
	o := endian.Source
	o.PutUint16(msg[0:], StartOfMessage)
	msg[2] = hdr.Version
	msg[3] = hdr.SessionID
	o.PutUint16(msg[4:], hdr.Type)
	msg[6] = hdr.Command
	msg[7] = hdr.Subsystem
	msg[8] = hdr.Channel
	msg[9] = hdr.Sequence
	o.PutUint32(msg[12:], uint32(len(payload)))
	copy(msg[MessageHeaderSize:], payload)
	return msg
}

// BuildSonarMessage frames a subbottom sonar data message from a trace header
// and raw sample bytes.
func BuildSonarMessage(f TraceHeaderFields, samples []byte) []byte {
	payload := make([]byte, 0, TraceHeaderSize+len(samples))
	payload = append(payload, BuildTraceHeader(f)...)
	payload = append(payload, samples...)
	return BuildMessage(MessageHeader{Version: 10, Type: MsgSonarData, Subsystem: SubsystemSubbottom}, payload)
}

// EncodeInt16Samples lays out values as consecutive source-order shorts.
func EncodeInt16Samples(values []int16) []byte {
	out := make([]byte, 0, 2*len(values))
	for _, v := range values {
		out = endian.Source.AppendUint16(out, uint16(v))
	}
	return out
}
