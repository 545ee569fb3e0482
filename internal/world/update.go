package world

import (
	"math"

	"github.com/retcode/AshEmu/internal/packet"
)

// maxUpdateFields caps the builder's backing array. The tallest field this
// emulator ever sets is the TBC PLAYER_FIELD_MAX_LEVEL at 0x0607; 1600
// leaves headroom the way the reference implementation's fixed array does.
const maxUpdateFields = 1600

// UpdateBuilder assembles a sparse update-field set: callers set named
// fields in any order, and Build emits the block-count-prefixed bitmask
// followed by the set values in ascending index order.
type UpdateBuilder struct {
	values   [maxUpdateFields]uint32
	isSet    [maxUpdateFields]bool
	maxField int
}

// NewUpdateBuilder returns an empty builder.
func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{maxField: -1}
}

func (b *UpdateBuilder) touch(field int) {
	if field > b.maxField {
		b.maxField = field
	}
}

// SetUint32 sets a single field to a raw uint32 value.
func (b *UpdateBuilder) SetUint32(field int, value uint32) {
	if field < 0 || field >= maxUpdateFields {
		return
	}
	b.values[field] = value
	b.isSet[field] = true
	b.touch(field)
}

// SetInt32 sets a single field to an int32 value, bit-cast to uint32.
func (b *UpdateBuilder) SetInt32(field int, value int32) {
	b.SetUint32(field, uint32(value))
}

// SetFloat sets a single field to a float32 value, bit-cast to uint32.
func (b *UpdateBuilder) SetFloat(field int, value float32) {
	b.SetUint32(field, math.Float32bits(value))
}

// SetGUID sets the two adjacent fields starting at field to the low and
// high 32 bits of a 64-bit guid.
func (b *UpdateBuilder) SetGUID(field int, value uint64) {
	if field < 0 || field+1 >= maxUpdateFields {
		return
	}
	b.SetUint32(field, uint32(value))
	b.SetUint32(field+1, uint32(value>>32))
}

// SetByte sets one byte (0-3, least significant first) within a u32 field,
// leaving the other three bytes of that field untouched.
func (b *UpdateBuilder) SetByte(field, byteIndex int, value uint8) {
	if field < 0 || field >= maxUpdateFields || byteIndex < 0 || byteIndex > 3 {
		return
	}
	shift := uint(byteIndex * 8)
	mask := uint32(0xFF) << shift
	b.values[field] = (b.values[field] &^ mask) | (uint32(value) << shift)
	b.isSet[field] = true
	b.touch(field)
}

// Build writes the block-count byte, the bitmask words, and the set values
// in ascending index order to w.
func (b *UpdateBuilder) Build(w *packet.Writer) {
	if b.maxField < 0 {
		w.Uint8(0)
		return
	}
	fieldCount := b.maxField + 1
	blockCount := (fieldCount + 31) / 32

	w.Uint8(uint8(blockCount))

	mask := make([]uint32, blockCount)
	for i := 0; i <= b.maxField; i++ {
		if b.isSet[i] {
			mask[i/32] |= 1 << uint(i%32)
		}
	}
	for _, word := range mask {
		w.Uint32(word)
	}

	for i := 0; i < fieldCount; i++ {
		if b.isSet[i] {
			w.Uint32(b.values[i])
		}
	}
}
