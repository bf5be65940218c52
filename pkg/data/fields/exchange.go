package fields

import (
	"fmt"

	"github.com/wmjtyd/libstock/pkg/data/serializer"
)

// Exchange is the 1-byte exchange code.
type Exchange uint8

const (
	ExchangeCrypto  Exchange = 1
	ExchangeFtx     Exchange = 2
	ExchangeBinance Exchange = 3
	ExchangeHuobi   Exchange = 8
	ExchangeKucoin  Exchange = 10
	ExchangeOkx     Exchange = 11
)

var exchangeTable = lazyBimap(func() map[string]Exchange {
	return map[string]Exchange{
		"crypto":  ExchangeCrypto,
		"ftx":     ExchangeFtx,
		"binance": ExchangeBinance,
		"huobi":   ExchangeHuobi,
		"kucoin":  ExchangeKucoin,
		"okx":     ExchangeOkx,
	}
})

// ParseExchange maps a lowercase exchange name to its code.
func ParseExchange(name string) (Exchange, error) {
	code, ok := exchangeTable().byName(name)
	if !ok {
		return 0, &Error{Kind: KindUnimplementedExchange, Value: name}
	}
	return code, nil
}

func (e Exchange) String() string {
	if name, ok := exchangeTable().byCode(e); ok {
		return name
	}
	return fmt.Sprintf("exchange(%d)", uint8(e))
}

func (e *Exchange) Size() int { return 1 }

func (e *Exchange) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(e, dst); err != nil {
		return err
	}
	if _, ok := exchangeTable().byCode(*e); !ok {
		return &Error{Kind: KindUnimplementedExchange, Value: uint8(*e)}
	}
	dst[0] = byte(*e)
	return nil
}

func (e *Exchange) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(e, src); err != nil {
		return err
	}
	code := Exchange(src[0])
	if _, ok := exchangeTable().byCode(code); !ok {
		return &Error{Kind: KindUnimplementedExchange, Value: src[0]}
	}
	*e = code
	return nil
}
