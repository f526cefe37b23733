package hooks

import (
	"context"
	"sort"

	"github.com/rowkit/csvjson/codec"
	"github.com/rowkit/csvjson/value"
)

// asRecords type-asserts the data payload threaded through a
// before/afterConvert hook into the record set every builtin hook here
// operates on.
func asRecords(data interface{}) ([]*codec.Record, bool) {
	records, ok := data.([]*codec.Record)
	return records, ok
}

// Filter keeps only records for which pred returns true, preserving order.
func Filter(pred func(rec *codec.Record, index int) bool) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		out := make([]*codec.Record, 0, len(records))
		for i, r := range records {
			if pred(r, i) {
				out = append(out, r)
			}
		}
		return out, nil
	}
}

// FilterAsync is Filter for a context-aware, fallible predicate.
func FilterAsync(pred func(ctx context.Context, rec *codec.Record, index int) (bool, error)) AfterConvertFunc {
	return func(ctx context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		out := make([]*codec.Record, 0, len(records))
		for i, r := range records {
			keep, err := pred(ctx, r, i)
			if err != nil {
				return nil, err
			}
			if keep {
				out = append(out, r)
			}
		}
		return out, nil
	}
}

// Map transforms every record through fn.
func Map(fn func(rec *codec.Record) (*codec.Record, error)) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		out := make([]*codec.Record, len(records))
		for i, r := range records {
			mapped, err := fn(r)
			if err != nil {
				return nil, err
			}
			out[i] = mapped
		}
		return out, nil
	}
}

// MapAsync is Map for a context-aware mapper.
func MapAsync(fn func(ctx context.Context, rec *codec.Record) (*codec.Record, error)) AfterConvertFunc {
	return func(ctx context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		out := make([]*codec.Record, len(records))
		for i, r := range records {
			mapped, err := fn(ctx, r)
			if err != nil {
				return nil, err
			}
			out[i] = mapped
		}
		return out, nil
	}
}

// Sort reorders records by cmp (a < b), stably.
func Sort(less func(a, b *codec.Record) bool) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		out := append([]*codec.Record(nil), records...)
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
		return out, nil
	}
}

// Limit truncates the record set to at most n entries.
func Limit(n int) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok || n < 0 || len(records) <= n {
			return data, nil
		}
		return records[:n], nil
	}
}

// AddMetadata stamps every declared key/value pair onto every record,
// overwriting any existing field of the same name.
func AddMetadata(meta map[string]interface{}) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		for _, r := range records {
			for k, v := range meta {
				r.Set(k, value.FromInterface(v))
			}
		}
		return records, nil
	}
}

// TransformKeys renames every record's keys through fn, preserving column
// order and values.
func TransformKeys(fn func(key string) string) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		out := make([]*codec.Record, len(records))
		for i, r := range records {
			renamed := codec.NewRecord()
			for _, k := range r.Keys() {
				v, _ := r.Get(k)
				renamed.Set(fn(k), v)
			}
			out[i] = renamed
		}
		return out, nil
	}
}

// TransformValues applies fn to every field of every record, keeping keys
// and order unchanged.
func TransformValues(fn func(v value.Value) value.Value) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		for _, r := range records {
			for _, k := range r.Keys() {
				v, _ := r.Get(k)
				r.Set(k, fn(v))
			}
		}
		return records, nil
	}
}

// Validate runs pred over every record; a failing record is reported to
// onError and dropped unless onError itself returns an error, which aborts
// the whole hook chain immediately (spec §4.D "validate(pred, onError)").
func Validate(pred func(rec *codec.Record) bool, onError func(rec *codec.Record, index int) error) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		out := make([]*codec.Record, 0, len(records))
		for i, r := range records {
			if pred(r) {
				out = append(out, r)
				continue
			}
			if err := onError(r, i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// Deduplicate keeps only the first record for each key produced by keyOf.
func Deduplicate(keyOf func(rec *codec.Record) string) AfterConvertFunc {
	return func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
		records, ok := asRecords(data)
		if !ok {
			return data, nil
		}
		seen := make(map[string]struct{}, len(records))
		out := make([]*codec.Record, 0, len(records))
		for _, r := range records {
			key := keyOf(r)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}
		return out, nil
	}
}
