// Package ranging implements the satellite ranging frame:
//
//	[sync "C++"][distance f32][satX f32][satY f32][crc16 hi][crc16 lo]
//
// Floats are little-endian. The CRC is CCITT/XModem over the first 15 bytes.
package ranging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

const (
	Sync        = "C++"
	PayloadSize = len(Sync) + 3*4
	FrameSize   = PayloadSize + 2
)

var (
	ErrNoSync     = errors.New("ranging: sync marker not found")
	ErrShortFrame = errors.New("ranging: truncated frame")
	ErrChecksum   = errors.New("ranging: checksum mismatch")
)

type Measurement struct {
	Distance float32 `json:"distance"`
	SatX     float32 `json:"sat_x"`
	SatY     float32 `json:"sat_y"`
}

// CRC16 computes CRC-16/XMODEM (poly 0x1021, init 0).
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc>>8 | crc<<8
		crc ^= uint16(b)
		crc ^= (crc & 0xff) >> 4
		crc ^= (crc << 8) << 4
		crc ^= ((crc & 0xff) << 4) << 1
	}
	return crc
}

// Encode builds one frame. corrupt is added to the checksum; zero leaves it valid.
func Encode(m Measurement, corrupt uint16) []byte {
	buf := make([]byte, FrameSize)
	copy(buf, Sync)
	binary.LittleEndian.PutUint32(buf[3:], math.Float32bits(m.Distance))
	binary.LittleEndian.PutUint32(buf[7:], math.Float32bits(m.SatX))
	binary.LittleEndian.PutUint32(buf[11:], math.Float32bits(m.SatY))
	binary.BigEndian.PutUint16(buf[PayloadSize:], CRC16(buf[:PayloadSize])+corrupt)
	return buf
}

// Wrap surrounds a frame with filler bytes.
func Wrap(frame, prefix, suffix []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(frame)+len(suffix))
	out = append(out, prefix...)
	out = append(out, frame...)
	return append(out, suffix...)
}

// Decode locates a frame inside buf and verifies it. When several sync markers are
// present the first one carrying a valid checksum wins. On ErrChecksum the parsed
// measurement of the first complete candidate is still returned.
func Decode(buf []byte) (Measurement, error) {
	sync := []byte(Sync)
	var (
		first   Measurement
		haveBad bool
		sawSync bool
		offset  int
	)
	for offset <= len(buf)-len(sync) {
		i := bytes.Index(buf[offset:], sync)
		if i < 0 {
			break
		}
		start := offset + i
		offset = start + 1
		sawSync = true
		if len(buf)-start < FrameSize {
			continue
		}
		frame := buf[start : start+FrameSize]
		m := parse(frame)
		if checksumOK(frame) {
			return m, nil
		}
		if !haveBad {
			first, haveBad = m, true
		}
	}
	switch {
	case haveBad:
		return first, ErrChecksum
	case sawSync:
		return Measurement{}, ErrShortFrame
	default:
		return Measurement{}, ErrNoSync
	}
}

// Valid reports whether buf contains a frame with a correct checksum.
func Valid(buf []byte) bool {
	_, err := Decode(buf)
	return err == nil
}

func parse(frame []byte) Measurement {
	return Measurement{
		Distance: math.Float32frombits(binary.LittleEndian.Uint32(frame[3:])),
		SatX:     math.Float32frombits(binary.LittleEndian.Uint32(frame[7:])),
		SatY:     math.Float32frombits(binary.LittleEndian.Uint32(frame[11:])),
	}
}

func checksumOK(frame []byte) bool {
	return binary.BigEndian.Uint16(frame[PayloadSize:]) == CRC16(frame[:PayloadSize])
}
