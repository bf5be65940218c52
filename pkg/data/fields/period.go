package fields

import "github.com/wmjtyd/libstock/pkg/data/serializer"

// Period is a k-line interval such as "1m".
type Period string

var periodTable = lazyBimap(func() map[Period]uint8 {
	return map[Period]uint8{
		"1m":  1,
		"5m":  2,
		"30m": 3,
		"1h":  4,
	}
})

func (p *Period) Size() int { return 1 }

func (p *Period) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(p, dst); err != nil {
		return err
	}
	code, ok := periodTable().byName(*p)
	if !ok {
		return &Error{Kind: KindUnimplementedPeriod, Value: string(*p)}
	}
	dst[0] = code
	return nil
}

func (p *Period) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(p, src); err != nil {
		return err
	}
	name, ok := periodTable().byCode(src[0])
	if !ok {
		return &Error{Kind: KindUnimplementedPeriod, Value: src[0]}
	}
	*p = name
	return nil
}
