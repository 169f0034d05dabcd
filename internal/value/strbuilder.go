package value

import (
	"strings"

	"kslang/internal/object"
)

// StrBuilder is a mutable helper type for incremental string construction
// (spec §4.B notes str itself is immutable; a separate builder avoids
// O(n^2) concatenation in loops, same split kscript makes between
// ks_str and its internal vcfmt buffer).
type StrBuilder struct {
	object.Header
	buf strings.Builder
}

var StrBuilderType = object.NewType("strbuilder")

func (b *StrBuilder) DecRef() { b.Header.DecRef(nil) }

func NewStrBuilder() *StrBuilder {
	return &StrBuilder{Header: object.NewHeader(StrBuilderType)}
}

func (b *StrBuilder) Append(s string) { b.buf.WriteString(s) }

func (b *StrBuilder) Build() *Str { return NewStr(b.buf.String()) }

func init() {
	StrBuilderType.Slots.Str = func(v object.Value) (string, error) {
		return v.(*StrBuilder).buf.String(), nil
	}
	StrBuilderType.Slots.Repr = StrBuilderType.Slots.Str
}
