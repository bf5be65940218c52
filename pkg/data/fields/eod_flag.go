package fields

import "github.com/wmjtyd/libstock/pkg/data/serializer"

// EndOfData is the 0x00 sentinel closing every record.
type EndOfData struct{}

func (e *EndOfData) Size() int { return 1 }

func (e *EndOfData) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(e, dst); err != nil {
		return err
	}
	dst[0] = 0
	return nil
}

func (e *EndOfData) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(e, src); err != nil {
		return err
	}
	if src[0] != 0 {
		return &Error{Kind: KindDataEndedTooEarly, Value: src[0]}
	}
	return nil
}
