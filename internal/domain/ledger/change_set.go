package ledger

import (
	"github.com/google/uuid"
)

// AuditableChange is one entity mutation captured for the audit trail. The
// mutating operation records it explicitly together with before/after field
// snapshots; nothing is discovered by runtime introspection.
type AuditableChange struct {
	Table  string
	Action AuditAction
	Key    map[string]interface{}
	Old    map[string]interface{}
	New    map[string]interface{}
}

// ChangeSet collects the auditable changes of one unit of work. The commit
// path turns each change into exactly one AuditLog row inside the same
// transaction as the business mutation.
type ChangeSet struct {
	changes []AuditableChange
}

// NewChangeSet creates an empty change set
func NewChangeSet() *ChangeSet {
	return &ChangeSet{changes: make([]AuditableChange, 0)}
}

// RecordCreate captures a newly created entity instance
func (c *ChangeSet) RecordCreate(table string, id uuid.UUID, newValues map[string]interface{}) {
	c.changes = append(c.changes, AuditableChange{
		Table:  table,
		Action: AuditActionCreate,
		Key:    map[string]interface{}{"ID": id.String()},
		New:    newValues,
	})
}

// RecordUpdate captures changed fields of an existing instance. Updates with
// no changed field are dropped.
func (c *ChangeSet) RecordUpdate(table string, id uuid.UUID, oldValues, newValues map[string]interface{}) {
	old, updated := diffValues(oldValues, newValues)
	if len(updated) == 0 {
		return
	}
	c.changes = append(c.changes, AuditableChange{
		Table:  table,
		Action: AuditActionUpdate,
		Key:    map[string]interface{}{"ID": id.String()},
		Old:    old,
		New:    updated,
	})
}

// RecordDelete captures a removed instance with its last known values
func (c *ChangeSet) RecordDelete(table string, id uuid.UUID, oldValues map[string]interface{}) {
	c.changes = append(c.changes, AuditableChange{
		Table:  table,
		Action: AuditActionDelete,
		Key:    map[string]interface{}{"ID": id.String()},
		Old:    oldValues,
	})
}

// Changes returns the collected changes in record order
func (c *ChangeSet) Changes() []AuditableChange {
	return c.changes
}

// Len returns the number of collected changes
func (c *ChangeSet) Len() int {
	return len(c.changes)
}

// diffValues keeps only the fields whose value actually changed
func diffValues(oldValues, newValues map[string]interface{}) (old, updated map[string]interface{}) {
	old = make(map[string]interface{})
	updated = make(map[string]interface{})
	for field, newVal := range newValues {
		if oldVal, ok := oldValues[field]; !ok || oldVal != newVal {
			if ok {
				old[field] = oldVal
			}
			updated[field] = newVal
		}
	}
	return old, updated
}
