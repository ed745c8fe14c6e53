package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the column names declared by "db" tags of T,
// descending into embedded structs (entity.BaseEntity, entity.Document).
// Repositories call it once at construction.
//
//	cols := ExtractDBColumns[invoice.Invoice]()
//	// ["id", "version", "created_at", "updated_at", "client_id", "number", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := typeMetadataOf(reflect.TypeOf(zero))
	return meta.columns()
}

type fieldInfo struct {
	index int
	dbTag string
}

// typeMetadata is the cached reflection result for one struct type.
type typeMetadata struct {
	fields   []fieldInfo
	embedded []int
	children []*typeMetadata
}

func (m *typeMetadata) columns() []string {
	var cols []string
	for i := range m.embedded {
		cols = append(cols, m.children[i].columns()...)
	}
	for _, f := range m.fields {
		cols = append(cols, f.dbTag)
	}
	return cols
}

var typeCache sync.Map // map[reflect.Type]*typeMetadata

func typeMetadataOf(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				meta.embedded = append(meta.embedded, i)
				meta.children = append(meta.children, typeMetadataOf(field.Type))
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.fields = append(meta.fields, fieldInfo{index: i, dbTag: tag})
		}
	}

	typeCache.Store(t, meta)
	return meta
}

// StructToMap converts a struct to a column map using "db" tags.
// Fields without a tag or tagged "-" are skipped.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	fillMap(res, rv, typeMetadataOf(rv.Type()))
	return res
}

func fillMap(res map[string]any, rv reflect.Value, meta *typeMetadata) {
	for i, idx := range meta.embedded {
		field := rv.Field(idx)
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		}
		fillMap(res, field, meta.children[i])
	}
	for _, fi := range meta.fields {
		res[fi.dbTag] = rv.Field(fi.index).Interface()
	}
}
