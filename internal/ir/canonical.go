package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Key returns a canonical identity for v. Two values have the same key
// exactly when they are the same constant of the same family.
//
// Key format: "<tag>:<payload>". Tags are single letters so that payloads of
// different families never collide:
//
//	n:            null
//	s:abc         string (raw bytes, no normalization)
//	i:18          integer
//	f:<hex bits>  float (bit pattern, so -0 and NaN payloads stay distinct)
//	d:1.5         decimal (trailing zeros stripped: 1.50 == 1.5)
//	b:1           bool
//	t:<rfc3339>   datetime, nanosecond precision with offset
//	u:<nanos>     duration
//	g:<uuid>      guid
//	q:[k1,k2]     sequence of element keys
func Key(v IRValue) string {
	var b strings.Builder
	writeKey(&b, v)
	return b.String()
}

func writeKey(b *strings.Builder, v IRValue) {
	switch val := v.(type) {
	case nil, IRNull:
		b.WriteString("n:")
	case IRString:
		b.WriteString("s:")
		b.WriteString(string(val))
	case IRInt:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case IRFloat:
		b.WriteString("f:")
		b.WriteString(strconv.FormatUint(math.Float64bits(float64(val)), 16))
	case IRDecimal:
		b.WriteString("d:")
		b.WriteString(val.String())
	case IRBool:
		if val {
			b.WriteString("b:1")
		} else {
			b.WriteString("b:0")
		}
	case IRDateTime:
		b.WriteString("t:")
		b.WriteString(time.Time(val).Format(time.RFC3339Nano))
	case IRDuration:
		b.WriteString("u:")
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case IRGuid:
		b.WriteString("g:")
		b.WriteString(uuid.UUID(val).String())
	case IRSequence:
		// Element keys are length-prefixed so that commas inside strings
		// cannot fake an element boundary.
		b.WriteString("q:[")
		for i, elem := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			ek := Key(elem)
			b.WriteString(strconv.Itoa(len(ek)))
			b.WriteByte('#')
			b.WriteString(ek)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "?:%T", v)
	}
}
