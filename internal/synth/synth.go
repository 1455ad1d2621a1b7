// Package synth produces random values for schema fields.
//
// All randomness flows from a single seeded source so a run can be
// reproduced with --seed.
package synth

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tsvgen/internal/schema"
)

const (
	alnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	bases = "ACGT"

	// dates are drawn from the year before now
	lookbackDays = 365
)

// Source is a seeded random generator for field values, identifiers and
// sequences. It is not safe for concurrent use.
type Source struct {
	stream *rand.ChaCha8
	rng    *rand.Rand
	now    func() time.Time
}

// New returns a Source seeded with seed. A nil now uses time.Now.
func New(seed uint64, now func() time.Time) *Source {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	stream := rand.NewChaCha8(key)
	if now == nil {
		now = time.Now
	}
	return &Source{stream: stream, rng: rand.New(stream), now: now}
}

// String returns n random alphanumerics.
func (s *Source) String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alnum[s.rng.IntN(len(alnum))]
	}
	return string(b)
}

// Sequence returns n random nucleotides.
func (s *Source) Sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = bases[s.rng.IntN(len(bases))]
	}
	return b
}

// UUID returns a version 4 UUID drawn from the seeded stream.
func (s *Source) UUID() string {
	id, err := uuid.NewRandomFromReader(s.stream)
	if err != nil {
		// ChaCha8.Read never fails
		panic(err)
	}
	return id.String()
}

// Value draws a value for f. The dynamic type is string, int64, float64,
// bool or []string.
func (s *Source) Value(f schema.Field) any {
	if len(f.Enum) > 0 {
		return f.Enum[s.rng.IntN(len(f.Enum))]
	}
	switch f.Type {
	case schema.TypeArray:
		return s.array(*f.Items)
	case schema.TypeInteger:
		lo, hi := int64(f.Minimum), int64(f.Maximum)
		// bounds are below 2^63 so the span never wraps to zero
		return int64(uint64(lo) + s.rng.Uint64N(uint64(hi)-uint64(lo)+1))
	case schema.TypeNumber:
		x := f.Minimum + s.rng.Float64()*(f.Maximum-f.Minimum)
		x = math.Round(x*100) / 100
		return math.Min(math.Max(x, f.Minimum), f.Maximum)
	case schema.TypeBoolean:
		return s.rng.IntN(2) == 1
	}
	switch f.Format {
	case schema.FormatDate:
		days := s.rng.IntN(lookbackDays + 1)
		return s.now().AddDate(0, 0, -days).Format(schema.DateLayout)
	case schema.FormatDateTime:
		back := time.Duration(s.rng.Int64N(int64(lookbackDays*24*time.Hour/time.Second))) * time.Second
		return s.now().UTC().Add(-back).Truncate(time.Second).Format(schema.DateTimeLayout)
	case schema.FormatUUID:
		return s.UUID()
	}
	return s.String(f.MinLen + s.rng.IntN(f.MaxLen-f.MinLen+1))
}

func (s *Source) array(item schema.Field) []string {
	if len(item.Enum) > 0 {
		k := 1 + s.rng.IntN(min(schema.MaxArrayItems, len(item.Enum)))
		perm := s.rng.Perm(len(item.Enum))
		out := make([]string, k)
		for i := range out {
			out[i] = item.Enum[perm[i]]
		}
		return out
	}
	k := 1 + s.rng.IntN(schema.MaxArrayItems)
	out := make([]string, k)
	for i := range out {
		out[i] = Format(s.Value(item))
	}
	return out
}

// Format renders a value the way it appears in a TSV cell.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return strings.Join(x, schema.ArraySeparator)
	}
	return ""
}
