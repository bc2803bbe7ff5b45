package math

import (
	m "math"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief An approximate representation of PI multiplied by 2. */
	K_PI_2 float32 = 2.0 * K_PI
	/** @brief An approximate representation of PI divided by 2. */
	K_HALF_PI float32 = 0.5 * K_PI
	/** @brief An approximate representation of PI divided by 4. */
	K_QUARTER_PI float32 = 0.25 * K_PI
	/** @brief An approximation of the square root of 2. */
	K_SQRT_TWO float32 = 1.41421356237309504880
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	/** @brief The multiplier to convert seconds to milliseconds. */
	K_SEC_TO_MS_MULTIPLIER float32 = 1000.0
	/** @brief A huge number that should be larger than any valid number used. */
	K_INFINITY float32 = 1e30
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

/**
 * float32 wrappers so callers do not convert through float64 at every site.
 */
func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func ktan(x float32) float32 {
	return float32(m.Tan(float64(x)))
}

func kacos(x float32) float32 {
	return float32(m.Acos(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	f := float64(v)
	return !m.IsNaN(f) && !m.IsInf(f, 0)
}

/**
 * @brief Converts the provided degrees to radians.
 */
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

/**
 * @brief Converts the provided radians to degrees.
 */
func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}

// Random is a seeded float32 source. A fixed seed reproduces the same sequence,
// which scenes rely on to scatter geometry identically across reloads.
type Random struct {
	r *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{r: rand.New(rand.NewSource(seed))}
}

// InRange returns a value in [min, max).
func (r *Random) InRange(min, max float32) float32 {
	return min + r.r.Float32()*(max-min)
}

// IntInRange returns a value in [min, max].
func (r *Random) IntInRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.r.Intn(max-min+1)
}
