package fields

import "github.com/wmjtyd/libstock/pkg/data/serializer"

const KlineIndicatorsSize = 30

// KlineIndicators holds open, high, low and close (5 bytes each) and the
// volume (10 bytes).
type KlineIndicators struct {
	Open   Decimal5
	High   Decimal5
	Low    Decimal5
	Close  Decimal5
	Volume Decimal10
}

func (k *KlineIndicators) parts() []serializer.FieldUnmarshaler {
	return []serializer.FieldUnmarshaler{&k.Open, &k.High, &k.Low, &k.Close, &k.Volume}
}

func (k *KlineIndicators) Size() int { return KlineIndicatorsSize }

func (k *KlineIndicators) MarshalTo(dst []byte) error {
	if err := serializer.CheckSize(k, dst); err != nil {
		return err
	}
	offset := 0
	for _, f := range k.parts() {
		if err := f.MarshalTo(dst[offset : offset+f.Size()]); err != nil {
			return err
		}
		offset += f.Size()
	}
	return nil
}

func (k *KlineIndicators) UnmarshalFrom(src []byte) error {
	if err := serializer.CheckSize(k, src); err != nil {
		return err
	}
	offset := 0
	for _, f := range k.parts() {
		if err := f.UnmarshalFrom(src[offset : offset+f.Size()]); err != nil {
			return err
		}
		offset += f.Size()
	}
	return nil
}
