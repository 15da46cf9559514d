package invoice

import (
	"context"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelmondragon/safetyshop-backend/pkg/logger"
)

// elementMarker flags UI element payloads that leaked into stored documents.
const elementMarker = "$$typeof"

// isoLayout matches the millisecond UTC form browsers emit for dates.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Sanitizer turns arbitrary order data into JSON-safe primitives:
// string, bool, finite numbers, []any, map[string]any or nil.
type Sanitizer struct {
	logg *logger.Logger
}

// NewSanitizer builds a sanitizer. A nil logger silences serialization warnings.
func NewSanitizer(logg *logger.Logger) *Sanitizer {
	return &Sanitizer{logg: logg}
}

var defaultSanitizer = &Sanitizer{}

// Normalize sanitizes value without logging.
func Normalize(value any) any {
	return defaultSanitizer.Normalize(context.Background(), value)
}

// Normalize sanitizes value. Containers reached twice within one call
// normalize to nil, which breaks reference cycles.
func (s *Sanitizer) Normalize(ctx context.Context, value any) any {
	w := &walker{
		ctx:  ctx,
		logg: s.logger(),
		seen: make(map[identity]struct{}),
	}
	return w.normalize(value)
}

func (s *Sanitizer) logger() *logger.Logger {
	if s == nil {
		return nil
	}
	return s.logg
}

type identity struct {
	typ reflect.Type
	ptr uintptr
}

type walker struct {
	ctx  context.Context
	logg *logger.Logger
	seen map[identity]struct{}
}

func (w *walker) normalize(value any) any {
	if out, ok := known(value); ok {
		return out
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128, reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}

	if id, tracked := identityOf(rv); tracked {
		if _, ok := w.seen[id]; ok {
			return nil
		}
		w.seen[id] = struct{}{}
	}

	// *time.Time and friends format like their values, not via MarshalJSON.
	if rv.Kind() == reflect.Pointer {
		if out, ok := known(rv.Elem().Interface()); ok {
			return out
		}
	}

	if out, ok := w.fromSerializer(value); ok {
		return out
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return w.normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		return w.sequence(rv)
	case reflect.Map:
		if isSetLike(rv.Type()) {
			return w.set(rv)
		}
		return w.mapping(rv)
	case reflect.Struct:
		return w.object(rv)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return finiteOrNil(rv.Float())
	}
	return nil
}

// known handles values with a fixed primitive form.
func known(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		return v, true
	case bool:
		return v, true
	case float64:
		return finiteOrNil(v), true
	case float32:
		if isFinite(float64(v)) {
			return v, true
		}
		return nil, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, true
	case json.Number:
		if f, err := v.Float64(); err == nil && isFinite(f) {
			return v, true
		}
		return nil, true
	case time.Time:
		return v.UTC().Format(isoLayout), true
	case []byte:
		if v == nil {
			return nil, true
		}
		return base64.StdEncoding.EncodeToString(v), true
	case primitive.ObjectID:
		return v.Hex(), true
	case uuid.UUID:
		return v.String(), true
	case decimal.Decimal:
		return finiteOrNil(v.InexactFloat64()), true
	}
	return nil, false
}

// fromSerializer prefers a value's own JSON or text form. Failures are
// logged and the caller falls through to structural handling.
func (w *walker) fromSerializer(value any) (out any, ok bool) {
	switch m := value.(type) {
	case json.Marshaler:
		raw, err := safeCall(m.MarshalJSON)
		if err != nil {
			w.warn(value, err)
			return nil, false
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			w.warn(value, err)
			return nil, false
		}
		return w.normalize(decoded), true
	case encoding.TextMarshaler:
		raw, err := safeCall(m.MarshalText)
		if err != nil {
			w.warn(value, err)
			return nil, false
		}
		return string(raw), true
	}
	return nil, false
}

func (w *walker) warn(value any, err error) {
	if w.logg == nil {
		return
	}
	ctx := w.logg.WithFields(w.ctx, map[string]any{
		"value_type": fmt.Sprintf("%T", value),
		"error":      err.Error(),
	})
	w.logg.Warn(ctx, "invoice.normalize.serializer_failed")
}

func (w *walker) sequence(rv reflect.Value) any {
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if item := w.normalize(rv.Index(i).Interface()); item != nil {
			out = append(out, item)
		}
	}
	return out
}

func (w *walker) set(rv reflect.Value) any {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	out := make([]any, 0, len(keys))
	for _, key := range keys {
		if item := w.normalize(key.Interface()); item != nil {
			out = append(out, item)
		}
	}
	return out
}

func (w *walker) mapping(rv reflect.Value) any {
	if rv.Type().Key().Kind() == reflect.String {
		if marker := rv.MapIndex(reflect.ValueOf(elementMarker).Convert(rv.Type().Key())); marker.IsValid() {
			return nil
		}
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		if item := w.normalize(iter.Value().Interface()); item != nil {
			out[fmt.Sprint(iter.Key().Interface())] = item
		}
	}
	return out
}

func (w *walker) object(rv reflect.Value) any {
	out := make(map[string]any, rv.NumField())
	typ := rv.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, skip := jsonName(field)
		if skip {
			continue
		}
		item := w.normalize(rv.Field(i).Interface())
		if item == nil {
			continue
		}
		if field.Anonymous && name == "" {
			if embedded, ok := item.(map[string]any); ok {
				for k, v := range embedded {
					if _, taken := out[k]; !taken {
						out[k] = v
					}
				}
				continue
			}
		}
		if name == "" {
			name = field.Name
		}
		out[name] = item
	}
	return out
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, false
}

func identityOf(rv reflect.Value) (identity, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.Len() == 0 {
			return identity{}, false
		}
		return identity{typ: rv.Type(), ptr: rv.Pointer()}, true
	}
	return identity{}, false
}

func isSetLike(typ reflect.Type) bool {
	elem := typ.Elem()
	return elem.Kind() == reflect.Struct && elem.NumField() == 0
}

func safeCall(fn func() ([]byte, error)) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("serializer panic: %v", r)
		}
	}()
	return fn()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteOrNil(f float64) any {
	if isFinite(f) {
		return f
	}
	return nil
}
