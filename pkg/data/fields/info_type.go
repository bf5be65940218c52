package fields

import (
	"fmt"

	"github.com/wmjtyd/libstock/pkg/data/serializer"
)

// InfoType is the side of an order book block.
type InfoType uint8

const (
	Asks InfoType = 1
	Bids InfoType = 2
)

var infoTypeTable = lazyBimap(func() map[string]InfoType {
	return map[string]InfoType{
		"asks": Asks,
		"bids": Bids,
	}
})

func ParseInfoType(name string) (InfoType, error) {
	code, ok := infoTypeTable().byName(name)
	if !ok {
		return 0, &Error{Kind: KindUnimplementedInfoType, Value: name}
	}
	return code, nil
}

func (i InfoType) String() string {
	if name, ok := infoTypeTable().byCode(i); ok {
		return name
	}
	return fmt.Sprintf("info_type(%d)", uint8(i))
}

func (i *InfoType) Size() int { return 1 }

func (i *InfoType) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(i, dst); err != nil {
		return err
	}
	if _, ok := infoTypeTable().byCode(*i); !ok {
		return &Error{Kind: KindUnimplementedInfoType, Value: uint8(*i)}
	}
	dst[0] = byte(*i)
	return nil
}

func (i *InfoType) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(i, src); err != nil {
		return err
	}
	code := InfoType(src[0])
	if _, ok := infoTypeTable().byCode(code); !ok {
		return &Error{Kind: KindUnimplementedInfoType, Value: src[0]}
	}
	*i = code
	return nil
}
