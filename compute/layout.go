package compute

import (
	"encoding/binary"
	"fmt"
	"math"
)

// The records below are the wire contract with external parallel
// backends and must stay tightly packed: 32 bytes each, little-endian,
// no implicit padding. Field order is load-bearing.

// ParticleRecordSize is the packed size of one ParticleRecord.
const ParticleRecordSize = 32

// ParticleRecord is the transport layout of one particle: position,
// velocity, acceleration, density and pressure as consecutive float32s.
type ParticleRecord struct {
	Pos [2]float32
	Vel [2]float32
	Acc [2]float32
	Rho float32
	P   float32
}

// GridParamsRecordSize is the packed size of one GridParamsRecord.
const GridParamsRecordSize = 32

// GridParamsRecord is the transport layout of the grid parameters,
// padded to 16-byte sub-groups for uniform-buffer alignment.
type GridParamsRecord struct {
	Origin   [2]float32 // world position of the minimum cell corner
	CellSize float32
	Pad0     float32
	Dims     [2]uint32 // nx, ny
	Pad1     [2]uint32
}

// PutParticle packs r into b, which must be at least ParticleRecordSize
// bytes.
func PutParticle(b []byte, r ParticleRecord) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], math.Float32bits(r.Pos[0]))
	le.PutUint32(b[4:], math.Float32bits(r.Pos[1]))
	le.PutUint32(b[8:], math.Float32bits(r.Vel[0]))
	le.PutUint32(b[12:], math.Float32bits(r.Vel[1]))
	le.PutUint32(b[16:], math.Float32bits(r.Acc[0]))
	le.PutUint32(b[20:], math.Float32bits(r.Acc[1]))
	le.PutUint32(b[24:], math.Float32bits(r.Rho))
	le.PutUint32(b[28:], math.Float32bits(r.P))
}

// GetParticle unpacks one record from b, which must be at least
// ParticleRecordSize bytes.
func GetParticle(b []byte) ParticleRecord {
	le := binary.LittleEndian
	return ParticleRecord{
		Pos: [2]float32{
			math.Float32frombits(le.Uint32(b[0:])),
			math.Float32frombits(le.Uint32(b[4:])),
		},
		Vel: [2]float32{
			math.Float32frombits(le.Uint32(b[8:])),
			math.Float32frombits(le.Uint32(b[12:])),
		},
		Acc: [2]float32{
			math.Float32frombits(le.Uint32(b[16:])),
			math.Float32frombits(le.Uint32(b[20:])),
		},
		Rho: math.Float32frombits(le.Uint32(b[24:])),
		P:   math.Float32frombits(le.Uint32(b[28:])),
	}
}

// EncodeParticles packs records into a fresh byte buffer.
func EncodeParticles(records []ParticleRecord) []byte {
	buf := make([]byte, len(records)*ParticleRecordSize)
	for i, r := range records {
		PutParticle(buf[i*ParticleRecordSize:], r)
	}
	return buf
}

// DecodeParticles unpacks a buffer produced by EncodeParticles. The
// buffer length must be an exact multiple of the record size.
func DecodeParticles(buf []byte) ([]ParticleRecord, error) {
	if len(buf)%ParticleRecordSize != 0 {
		return nil, fmt.Errorf("compute: particle buffer length %d is not a multiple of %d", len(buf), ParticleRecordSize)
	}
	records := make([]ParticleRecord, len(buf)/ParticleRecordSize)
	for i := range records {
		records[i] = GetParticle(buf[i*ParticleRecordSize:])
	}
	return records, nil
}

// PutGridParams packs r into b, which must be at least
// GridParamsRecordSize bytes.
func PutGridParams(b []byte, r GridParamsRecord) {
	le := binary.LittleEndian
	le.PutUint32(b[0:], math.Float32bits(r.Origin[0]))
	le.PutUint32(b[4:], math.Float32bits(r.Origin[1]))
	le.PutUint32(b[8:], math.Float32bits(r.CellSize))
	le.PutUint32(b[12:], math.Float32bits(r.Pad0))
	le.PutUint32(b[16:], r.Dims[0])
	le.PutUint32(b[20:], r.Dims[1])
	le.PutUint32(b[24:], r.Pad1[0])
	le.PutUint32(b[28:], r.Pad1[1])
}

// GetGridParams unpacks one record from b, which must be at least
// GridParamsRecordSize bytes.
func GetGridParams(b []byte) GridParamsRecord {
	le := binary.LittleEndian
	return GridParamsRecord{
		Origin: [2]float32{
			math.Float32frombits(le.Uint32(b[0:])),
			math.Float32frombits(le.Uint32(b[4:])),
		},
		CellSize: math.Float32frombits(le.Uint32(b[8:])),
		Pad0:     math.Float32frombits(le.Uint32(b[12:])),
		Dims:     [2]uint32{le.Uint32(b[16:]), le.Uint32(b[20:])},
		Pad1:     [2]uint32{le.Uint32(b[24:]), le.Uint32(b[28:])},
	}
}
