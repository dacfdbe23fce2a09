package snapshot

import (
	"math"

	"icehockey/internal/objmodel"
)

// Quantization is an implementation choice the spec leaves to the
// implementor (§6: "values are unsigned integers packed into the stated
// bit-width representing quantized world coordinates"); what's mandated is
// the bit width and the requirement that a byte-identical client see a
// byte-identical frame for a byte-identical world state, which this fixed
// scale/bias scheme satisfies deterministically.

// posScale converts meters to quantization units; posBias recenters the
// signed rink coordinate range into the unsigned field.
const posScale = 1024.0
const posBias = 60.0 // half-extent in meters comfortably covering a regulation rink

func quantizePos(v float64, bits int) uint32 {
	max := uint32(1)<<uint(bits) - 1
	scaled := (v + posBias) * posScale
	if scaled < 0 {
		scaled = 0
	}
	if scaled > float64(max) {
		scaled = float64(max)
	}
	return uint32(math.Round(scaled))
}

func dequantizePos(q uint32) float64 {
	return float64(q)/posScale - posBias
}

// QuantizeVec packs a Vec3 into three bits-wide fields.
func QuantizeVec(v objmodel.Vec3, bits int) QuantizedVec {
	return QuantizedVec{
		X: quantizePos(v.X, bits),
		Y: quantizePos(v.Y, bits),
		Z: quantizePos(v.Z, bits),
	}
}

// DequantizeVec reverses QuantizeVec.
func DequantizeVec(q QuantizedVec) objmodel.Vec3 {
	return objmodel.Vec3{X: dequantizePos(q.X), Y: dequantizePos(q.Y), Z: dequantizePos(q.Z)}
}

// packAxis quantizes a unit vector into a single bits-wide field using an
// azimuth/elevation split: the top half of the bits carries azimuth
// (atan2(z,x) over [0, 2pi)), the bottom half carries elevation (asin(y)
// over [-pi/2, pi/2]).
func packAxis(v objmodel.Vec3, bits int) uint32 {
	azBits := bits / 2
	elBits := bits - azBits

	az := math.Atan2(v.Z, v.X)
	if az < 0 {
		az += 2 * math.Pi
	}
	el := math.Asin(clamp(v.Y, -1, 1))

	azMax := float64(uint32(1)<<uint(azBits) - 1)
	elMax := float64(uint32(1)<<uint(elBits) - 1)

	azQ := uint32(math.Round(az / (2 * math.Pi) * azMax))
	elQ := uint32(math.Round((el + math.Pi/2) / math.Pi * elMax))

	return (azQ << uint(elBits)) | elQ
}

func unpackAxis(q uint32, bits int) objmodel.Vec3 {
	azBits := bits / 2
	elBits := bits - azBits
	azMax := float64(uint32(1)<<uint(azBits) - 1)
	elMax := float64(uint32(1)<<uint(elBits) - 1)

	elMask := uint32(1)<<uint(elBits) - 1
	elQ := q & elMask
	azQ := q >> uint(elBits)

	az := float64(azQ) / azMax * 2 * math.Pi
	el := float64(elQ)/elMax*math.Pi - math.Pi/2

	return objmodel.Vec3{
		X: math.Cos(az) * math.Cos(el),
		Y: math.Sin(el),
		Z: math.Sin(az) * math.Cos(el),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// QuantizeRot packs a two-axis orientation into two bits-wide fields.
func QuantizeRot(r objmodel.Rot, bits int) QuantizedRot {
	return QuantizedRot{
		Forward: packAxis(r.Forward, bits),
		Up:      packAxis(r.Up, bits),
	}
}

// DequantizeRot reverses QuantizeRot.
func DequantizeRot(q QuantizedRot, bits int) objmodel.Rot {
	return objmodel.Rot{
		Forward: unpackAxis(q.Forward, bits),
		Up:      unpackAxis(q.Up, bits),
	}
}

// quantizeAngle16 packs a radian angle into a 16-bit field for head/body rotation.
func quantizeAngle16(rad float64) uint32 {
	norm := math.Mod(rad, 2*math.Pi)
	if norm < 0 {
		norm += 2 * math.Pi
	}
	max := float64(uint32(1)<<RotBits - 1)
	return uint32(math.Round(norm / (2 * math.Pi) * max))
}

func dequantizeAngle16(q uint32) float64 {
	max := float64(uint32(1)<<RotBits - 1)
	return float64(q) / max * 2 * math.Pi
}
