package searchindex

import (
	"fmt"
	"strconv"

	shoperrors "github.com/Aman-CERP/shopindex/internal/errors"
)

// Kind names the source entity an index entry was derived from.
// The value is stored in the entry's entity_kind column.
type Kind string

const (
	KindProduct   Kind = "product"
	KindVariant   Kind = "variant"
	KindPriceTier Kind = "price_tier"
	KindOrder     Kind = "order"
	KindDesign    Kind = "design"
	KindLockTech  Kind = "lock_tech"
	KindImage     Kind = "image"

	// KindUnknown marks an index key outside every partition. It is never
	// written, only reported.
	KindUnknown Kind = "unknown"
)

// PartitionSpan is the distance between two kinds' offsets.
// Local entity ids must stay below it.
const PartitionSpan int64 = 1_000_000_000_000

// AllKinds lists every indexed kind.
var AllKinds = []Kind{
	KindProduct,
	KindVariant,
	KindPriceTier,
	KindOrder,
	KindDesign,
	KindLockTech,
	KindImage,
}

// Offset returns the partition offset for kind, or false if kind is unknown.
// PriceTier was added last and therefore sits above Image.
func Offset(kind Kind) (int64, bool) {
	switch kind {
	case KindProduct:
		return 1 * PartitionSpan, true
	case KindVariant:
		return 2 * PartitionSpan, true
	case KindOrder:
		return 3 * PartitionSpan, true
	case KindDesign:
		return 4 * PartitionSpan, true
	case KindLockTech:
		return 5 * PartitionSpan, true
	case KindImage:
		return 6 * PartitionSpan, true
	case KindPriceTier:
		return 7 * PartitionSpan, true
	default:
		return 0, false
	}
}

// GlobalKey maps a (kind, local id) pair to its index key.
// Ids outside [0, PartitionSpan) would collide with a neighbouring kind and
// are rejected with ErrKeyOutOfRange.
func GlobalKey(kind Kind, id int64) (int64, error) {
	offset, ok := Offset(kind)
	if !ok {
		return 0, shoperrors.New(shoperrors.ErrCodeUnknownKind,
			fmt.Sprintf("unknown entity kind %q", kind), nil)
	}
	if id < 0 || id >= PartitionSpan {
		return 0, shoperrors.New(shoperrors.ErrCodeKeyOutOfRange,
			fmt.Sprintf("%s id %d outside the index key partition", kind, id), nil).
			WithDetail("kind", string(kind)).
			WithDetail("id", strconv.FormatInt(id, 10)).
			WithSuggestion("entity ids must stay below 10^12 to keep index keys unique")
	}
	return offset + id, nil
}

// SplitKey is the inverse of GlobalKey.
func SplitKey(key int64) (Kind, int64, error) {
	if key >= PartitionSpan {
		partition := key / PartitionSpan
		for _, kind := range AllKinds {
			if offset, _ := Offset(kind); offset == partition*PartitionSpan {
				return kind, key % PartitionSpan, nil
			}
		}
	}
	return "", 0, shoperrors.New(shoperrors.ErrCodeUnknownKind,
		fmt.Sprintf("index key %d does not belong to any kind", key), nil)
}

// ParseKind converts a user-supplied name into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, kind := range AllKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", shoperrors.New(shoperrors.ErrCodeUnknownKind,
		fmt.Sprintf("unknown entity kind %q", s), nil)
}
