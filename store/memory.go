package store

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDB is an in-memory Collection provider with the same filter and
// update semantics the data layer uses against MongoDB. It backs the test
// suite and needs no running database.
type MemoryDB struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryDB returns an empty in-memory database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{collections: make(map[string]*memoryCollection)}
}

// Collection returns the named collection, creating it on first use.
func (m *MemoryDB) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[name]
	if !ok {
		c = &memoryCollection{}
		m.collections[name] = c
	}
	return c
}

// EnsureUnique registers a unique index over the given fields, mirroring
// DB.EnsureIndexes for the mongo backend.
func (m *MemoryDB) EnsureUnique(collection string, fields ...string) {
	c := m.Collection(collection).(*memoryCollection)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unique = append(c.unique, fields)
}

type memoryCollection struct {
	mu     sync.RWMutex
	docs   []bson.M
	unique [][]string
}

func (c *memoryCollection) Find(_ context.Context, filter bson.M, opts *FindOptions, results interface{}) error {
	f, err := toDoc(filter)
	if err != nil {
		return err
	}

	c.mu.RLock()
	var matched []bson.M
	for _, doc := range c.docs {
		if matchFilter(doc, f) {
			matched = append(matched, doc)
		}
	}
	c.mu.RUnlock()

	if opts != nil && opts.Sort != nil {
		sortDocs(matched, opts.Sort)
	}
	if opts != nil && opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts != nil && opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return decodeAll(matched, results)
}

func (c *memoryCollection) FindOne(_ context.Context, filter bson.M, result interface{}) error {
	f, err := toDoc(filter)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		if matchFilter(doc, f) {
			return decodeOne(doc, result)
		}
	}
	return ErrNoDocument
}

func (c *memoryCollection) InsertOne(_ context.Context, doc interface{}) (primitive.ObjectID, error) {
	d, err := toDoc(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := d["_id"].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
		d["_id"] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkUnique(d, -1); err != nil {
		return primitive.NilObjectID, err
	}
	c.docs = append(c.docs, d)
	return id, nil
}

// checkUnique verifies the registered unique key sets against every document
// except the one at skip (the document being replaced; -1 for inserts).
func (c *memoryCollection) checkUnique(doc bson.M, skip int) error {
	for _, fields := range c.unique {
		for i, existing := range c.docs {
			if i == skip {
				continue
			}
			same := true
			for _, field := range fields {
				ev, _ := lookupField(existing, field)
				nv, _ := lookupField(doc, field)
				if !equalValues(ev, nv) {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("index on %v: %w", fields, ErrDuplicateKey)
			}
		}
	}
	return nil
}

func (c *memoryCollection) UpdateOne(_ context.Context, filter bson.M, update bson.M) (int64, error) {
	f, err := toDoc(filter)
	if err != nil {
		return 0, err
	}
	u, err := toDoc(update)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if matchFilter(doc, f) {
			// Apply to a copy so a unique violation leaves the stored
			// document untouched, as mongo would.
			updated, err := toDoc(doc)
			if err != nil {
				return 0, err
			}
			applyUpdate(updated, u)
			if err := c.checkUnique(updated, i); err != nil {
				return 0, err
			}
			c.docs[i] = updated
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) DeleteOne(_ context.Context, filter bson.M) (int64, error) {
	f, err := toDoc(filter)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if matchFilter(doc, f) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memoryCollection) CountDocuments(_ context.Context, filter bson.M) (int64, error) {
	f, err := toDoc(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, doc := range c.docs {
		if matchFilter(doc, f) {
			n++
		}
	}
	return n, nil
}

// toDoc round-trips a value through BSON so that documents, filters, and
// update specs all live in the same decoded type space (ObjectID, int32/64,
// float64, primitive.DateTime, bson.A, bson.M).
func toDoc(v interface{}) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return mapify(d).(bson.M), nil
}

func mapify(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.D:
		m := bson.M{}
		for _, e := range t {
			m[e.Key] = mapify(e.Value)
		}
		return m
	case bson.A:
		out := make(bson.A, len(t))
		for i, e := range t {
			out[i] = mapify(e)
		}
		return out
	default:
		return v
	}
}

func lookupField(doc bson.M, path string) (interface{}, bool) {
	cur := interface{}(doc)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(bson.M)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func matchFilter(doc, filter bson.M) bool {
	for field, cond := range filter {
		val, found := lookupField(doc, field)
		if ops, ok := cond.(bson.M); ok && hasOperator(ops) {
			if !matchOperators(val, found, ops) {
				return false
			}
			continue
		}
		if cond == nil {
			if found && val != nil {
				return false
			}
			continue
		}
		if !found || !fieldEquals(val, cond) {
			return false
		}
	}
	return true
}

func hasOperator(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func matchOperators(val interface{}, found bool, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$in":
			list, ok := arg.(bson.A)
			if !ok {
				return false
			}
			any := false
			for _, e := range list {
				if found && fieldEquals(val, e) {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		case "$ne":
			if arg == nil {
				if !found || val == nil {
					return false
				}
				continue
			}
			if found && fieldEquals(val, arg) {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !found || !compareOp(val, arg, op) {
				return false
			}
		case "$regex":
			pattern, _ := arg.(string)
			if opts, ok := ops["$options"].(string); ok && strings.Contains(opts, "i") {
				pattern = "(?i)" + pattern
			}
			s, ok := val.(string)
			if !found || !ok {
				return false
			}
			re, err := regexp.Compile(pattern)
			if err != nil || !re.MatchString(s) {
				return false
			}
		case "$options":
			// consumed by $regex
		default:
			return false
		}
	}
	return true
}

// fieldEquals applies mongo's array-aware equality: an array field matches
// when the whole array or any element equals the condition value.
func fieldEquals(val, cond interface{}) bool {
	if arr, ok := val.(bson.A); ok {
		if equalValues(val, cond) {
			return true
		}
		for _, e := range arr {
			if equalValues(e, cond) {
				return true
			}
		}
		return false
	}
	return equalValues(val, cond)
}

func equalValues(a, b interface{}) bool {
	if na, ok := numericValue(a); ok {
		if nb, ok := numericValue(b); ok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func numericValue(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case primitive.DateTime:
		return float64(t), true
	default:
		return 0, false
	}
}

func compareOp(val, arg interface{}, op string) bool {
	c, ok := compareValues(val, arg)
	if !ok {
		return false
	}
	switch op {
	case "$gt":
		return c > 0
	case "$gte":
		return c >= 0
	case "$lt":
		return c < 0
	case "$lte":
		return c <= 0
	}
	return false
}

func compareValues(a, b interface{}) (int, bool) {
	if na, ok := numericValue(a); ok {
		if nb, ok := numericValue(b); ok {
			switch {
			case na < nb:
				return -1, true
			case na > nb:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	switch ta := a.(type) {
	case string:
		tb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(ta, tb), true
	case primitive.ObjectID:
		tb, ok := b.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return strings.Compare(ta.Hex(), tb.Hex()), true
	}
	return 0, false
}

func sortDocs(docs []bson.M, keys bson.D) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			dir := 1
			if n, ok := numericValue(key.Value); ok && n < 0 {
				dir = -1
			}
			av, _ := lookupField(docs[i], key.Key)
			bv, _ := lookupField(docs[j], key.Key)
			c, ok := compareValues(av, bv)
			if !ok || c == 0 {
				continue
			}
			return c*dir < 0
		}
		return false
	})
}

func applyUpdate(doc bson.M, update bson.M) {
	if set, ok := update["$set"].(bson.M); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if inc, ok := update["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := numericValue(doc[k])
			delta, _ := numericValue(v)
			doc[k] = int64(cur + delta)
		}
	}
	if push, ok := update["$push"].(bson.M); ok {
		for k, v := range push {
			arr, _ := doc[k].(bson.A)
			doc[k] = append(arr, v)
		}
	}
	if pull, ok := update["$pull"].(bson.M); ok {
		for k, v := range pull {
			arr, _ := doc[k].(bson.A)
			var kept bson.A
			for _, e := range arr {
				if !equalValues(e, v) {
					kept = append(kept, e)
				}
			}
			doc[k] = kept
		}
	}
}

func decodeOne(doc bson.M, result interface{}) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, result)
}

func decodeAll(docs []bson.M, results interface{}) error {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("results must be a pointer to a slice, got %T", results)
	}
	slice := rv.Elem()
	slice.Set(reflect.MakeSlice(slice.Type(), 0, len(docs)))
	for _, doc := range docs {
		elem := reflect.New(slice.Type().Elem())
		if err := decodeOne(doc, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}
