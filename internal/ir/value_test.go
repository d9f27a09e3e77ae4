package ir

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	id := uuid.MustParse("0193a3b4-5f6e-7c8d-9e0f-112233445566")
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "a", IRString("a")},
		{"int", 18, IRInt(18)},
		{"uint8", uint8(7), IRInt(7)},
		{"float", 1.5, IRFloat(1.5)},
		{"bool", true, IRBool(true)},
		{"time", at, IRDateTime(at)},
		{"duration", time.Minute, IRDuration(time.Minute)},
		{"uuid", id, IRGuid(id)},
		{"list", []any{1, "x"}, IRSequence{IRInt(1), IRString("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueOf_Rejects(t *testing.T) {
	_, err := ValueOf(struct{}{})
	assert.Error(t, err)

	_, err = ValueOf(uint64(1 << 63))
	assert.Error(t, err)

	_, err = ValueOf([]any{1, struct{}{}})
	assert.ErrorContains(t, err, "[1]")
}

func TestNative(t *testing.T) {
	d := decimal.RequireFromString("12.50")
	assert.Nil(t, Native(IRNull{}))
	assert.Equal(t, int64(3), Native(IRInt(3)))
	assert.Equal(t, "s", Native(IRString("s")))
	assert.True(t, d.Equal(Native(IRDecimal{d}).(decimal.Decimal)))
	assert.Equal(t, []any{int64(1), nil}, Native(IRSequence{IRInt(1), IRNull{}}))
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key(IRInt(18)), Key(IRInt(18)))
	assert.NotEqual(t, Key(IRInt(18)), Key(IRString("18")))
	assert.NotEqual(t, Key(IRInt(1)), Key(IRBool(true)))
	assert.Equal(t, Key(IRNull{}), Key(nil))

	a := IRDecimal{decimal.RequireFromString("1.50")}
	b := IRDecimal{decimal.RequireFromString("1.5")}
	assert.Equal(t, Key(a), Key(b))

	// A comma inside a string must not look like an element boundary.
	assert.NotEqual(t,
		Key(IRSequence{IRString("a,s:b")}),
		Key(IRSequence{IRString("a"), IRString("b")}))
}

func TestFits(t *testing.T) {
	tests := []struct {
		name string
		v    IRValue
		t    *Type
		want bool
	}{
		{"int into int32", IRInt(1), Int32, true},
		{"int into enum", IRInt(2), EnumOf("Status"), true},
		{"int into double", IRInt(1), Double, false},
		{"float into double", IRFloat(2.5), Double, true},
		{"float into int32", IRFloat(2.5), Int32, false},
		{"string into int32", IRString("a"), Int32, false},
		{"decimal", IRDecimal{decimal.NewFromInt(1)}, Decimal, true},
		{"datetime into offset", IRDateTime(time.Time{}), DateTimeOffset, true},
		{"guid", IRGuid(uuid.Nil), Guid, true},
		{"null into anything basic", IRNull{}, String, true},
		{"nullable wrapper", IRString("a"), NullableOf(String), true},
		{"nested sequence", IRSequence{IRInt(1)}, Int32, false},
		{"composite type", IRInt(1), SequenceOf(Int32), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fits(tt.v, tt.t))
		})
	}
}
