package cf

import "time"

// Pair is one dictionary entry in the form returned by Interface.
type Pair struct {
	Key   string
	Value interface{}
}

// Pairs is a dictionary converted by Interface; it preserves document order.
type Pairs []Pair

// Interface converts v into plain Go values: string, int64, uint64, float32,
// float64, bool, []byte, time.Time, []interface{} and Pairs. UIDs become
// uint64.
func Interface(v Value) interface{} {
	switch v := v.(type) {
	case String:
		return string(v)
	case *Number:
		if v.Signed {
			return int64(v.Value)
		}
		return v.Value
	case *Real:
		if v.Wide {
			return v.Value
		}
		return float32(v.Value)
	case Boolean:
		return bool(v)
	case *Array:
		return arrayInterface(v)
	case *Dictionary:
		return dictionaryInterface(v)
	case Data:
		return []byte(v)
	case Date:
		return time.Time(v)
	case UID:
		return uint64(v)
	}
	return nil
}

func arrayInterface(a *Array) []interface{} {
	out := make([]interface{}, len(a.Values))
	a.Range(func(i int, subv Value) {
		out[i] = Interface(subv)
	})
	return out
}

func dictionaryInterface(dict *Dictionary) Pairs {
	out := make(Pairs, 0, dict.Len())
	dict.Range(func(_ int, k string, subv Value) {
		out = append(out, Pair{Key: k, Value: Interface(subv)})
	})
	return out
}
