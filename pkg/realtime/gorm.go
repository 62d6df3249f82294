package realtime

import (
	"reflect"

	"gorm.io/gorm"
)

// Publisher receives change events from the GORM callbacks. Both *Broker
// and *RedisBridge satisfy it through publishFunc at the call site.
type Publisher interface {
	Publish(ev ChangeEvent)
}

// TrackedTables are the tables whose writes produce change events.
var TrackedTables = []string{"products", "customers", "orders", "user_profiles"}

// Instrument registers GORM callbacks that publish a ChangeEvent after
// every create, update, and delete on a tracked table. Reads are ignored.
// Events for rows written inside a rolled-back transaction may still be
// published; delivery is at least once.
func Instrument(db *gorm.DB, pub Publisher) error {
	tracked := make(map[string]bool, len(TrackedTables))
	for _, t := range TrackedTables {
		tracked[t] = true
	}

	emit := func(action string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if tx.Error != nil || tx.Statement == nil {
				return
			}
			table := tx.Statement.Table
			if !tracked[table] {
				return
			}
			pub.Publish(ChangeEvent{
				Table:  table,
				Action: action,
				ID:     extractID(tx),
			})
		}
	}

	if err := db.Callback().Create().After("gorm:create").
		Register("kasirin:notify_create", emit(ActionInsert)); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").
		Register("kasirin:notify_update", emit(ActionUpdate)); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").
		Register("kasirin:notify_delete", emit(ActionDelete))
}

// extractID pulls the string primary key out of the statement's model when
// available. Batch updates and deletes by condition return "".
func extractID(tx *gorm.DB) string {
	rv := tx.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Struct:
		return stringField(rv, "ID")
	case reflect.Slice, reflect.Array:
		if rv.Len() == 1 {
			el := rv.Index(0)
			if el.Kind() == reflect.Ptr {
				el = el.Elem()
			}
			if el.Kind() == reflect.Struct {
				return stringField(el, "ID")
			}
		}
	}
	return ""
}

func stringField(rv reflect.Value, name string) string {
	f := rv.FieldByName(name)
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return ""
}
