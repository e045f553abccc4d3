// Package journal holds the mutation journal: the append-only record of every change that can be
// reversed, and the closed set of action types it understands.
package journal

import (
	"fmt"
	"sort"
)

// EntityKind identifies what kind of thing an action touched
type EntityKind string

const (
	KindCategory    EntityKind = "CATEGORY"
	KindProduct     EntityKind = "PRODUCT"
	KindSupplier    EntityKind = "SUPPLIER"
	KindCustomer    EntityKind = "CUSTOMER"
	KindStock       EntityKind = "STOCK"
	KindBatch       EntityKind = "BATCH"
	KindTransaction EntityKind = "TRANSACTION"
	KindLine        EntityKind = "TRANSACTION_LINE"
	KindJournal     EntityKind = "JOURNAL"
)

// Verb identifies what was done
type Verb string

const (
	VerbAdd     Verb = "ADD"
	VerbUpdate  Verb = "UPDATE"
	VerbDelete  Verb = "DELETE"
	VerbImport  Verb = "IMPORT"
	VerbExport  Verb = "EXPORT"
	VerbApprove Verb = "APPROVE"
	VerbCancel  Verb = "CANCEL"
	VerbUndo    Verb = "UNDO"
)

// ActionType is the stored tag of a journal entry
type ActionType string

const (
	ActionAddCategory    ActionType = "ADD_CATEGORY"
	ActionUpdateCategory ActionType = "UPDATE_CATEGORY"
	ActionDeleteCategory ActionType = "DELETE_CATEGORY"

	ActionAddProduct    ActionType = "ADD_PRODUCT"
	ActionUpdateProduct ActionType = "UPDATE_PRODUCT"
	ActionDeleteProduct ActionType = "DELETE_PRODUCT"

	ActionAddSupplier    ActionType = "ADD_SUPPLIER"
	ActionUpdateSupplier ActionType = "UPDATE_SUPPLIER"
	ActionDeleteSupplier ActionType = "DELETE_SUPPLIER"

	ActionAddCustomer    ActionType = "ADD_CUSTOMER"
	ActionUpdateCustomer ActionType = "UPDATE_CUSTOMER"
	ActionDeleteCustomer ActionType = "DELETE_CUSTOMER"

	ActionImportStock ActionType = "IMPORT_STOCK"
	ActionExportStock ActionType = "EXPORT_STOCK"
	ActionImportBatch ActionType = "IMPORT_BATCH"
	ActionExportBatch ActionType = "EXPORT_BATCH"

	ActionUpdateTransaction  ActionType = "UPDATE_TRANSACTION"
	ActionApproveTransaction ActionType = "APPROVE_TRANSACTION"
	ActionCancelTransaction  ActionType = "CANCEL_TRANSACTION"

	// Line edits of a pending transaction
	ActionAddTransactionLine    ActionType = "ADD_TRANSACTION_LINE"
	ActionUpdateTransactionLine ActionType = "UPDATE_TRANSACTION_LINE"
	ActionDeleteTransactionLine ActionType = "DELETE_TRANSACTION_LINE"

	// ActionUndo marks that an undo happened. It is never itself undone and is never hidden.
	ActionUndo ActionType = "UNDO_ACTION"
)

// Action is the decoded form of an ActionType
type Action struct {
	Kind EntityKind
	Verb Verb
}

var actions = map[ActionType]Action{
	ActionAddCategory:        {KindCategory, VerbAdd},
	ActionUpdateCategory:     {KindCategory, VerbUpdate},
	ActionDeleteCategory:     {KindCategory, VerbDelete},
	ActionAddProduct:         {KindProduct, VerbAdd},
	ActionUpdateProduct:      {KindProduct, VerbUpdate},
	ActionDeleteProduct:      {KindProduct, VerbDelete},
	ActionAddSupplier:        {KindSupplier, VerbAdd},
	ActionUpdateSupplier:     {KindSupplier, VerbUpdate},
	ActionDeleteSupplier:     {KindSupplier, VerbDelete},
	ActionAddCustomer:        {KindCustomer, VerbAdd},
	ActionUpdateCustomer:     {KindCustomer, VerbUpdate},
	ActionDeleteCustomer:     {KindCustomer, VerbDelete},
	ActionImportStock:        {KindStock, VerbImport},
	ActionExportStock:        {KindStock, VerbExport},
	ActionImportBatch:        {KindBatch, VerbImport},
	ActionExportBatch:        {KindBatch, VerbExport},
	ActionUpdateTransaction:  {KindTransaction, VerbUpdate},
	ActionApproveTransaction: {KindTransaction, VerbApprove},
	ActionCancelTransaction:  {KindTransaction, VerbCancel},
	ActionUndo:               {KindJournal, VerbUndo},

	ActionAddTransactionLine:    {KindLine, VerbAdd},
	ActionUpdateTransactionLine: {KindLine, VerbUpdate},
	ActionDeleteTransactionLine: {KindLine, VerbDelete},
}

// Decode returns the kind and verb for a known action type
func (t ActionType) Decode() (Action, bool) {
	a, ok := actions[t]
	return a, ok
}

// IsValid reports whether the action type belongs to the known vocabulary
func (t ActionType) IsValid() bool {
	_, ok := actions[t]
	return ok
}

// IsMarker reports whether the type is the undo marker
func (t ActionType) IsMarker() bool {
	return t == ActionUndo
}

// ParseActionType validates a stored or user-supplied tag
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown action type %q", s)
	}
	return t, nil
}

// ActionFor builds the action type for a kind and verb pair
func ActionFor(kind EntityKind, verb Verb) (ActionType, bool) {
	for t, a := range actions {
		if a.Kind == kind && a.Verb == verb {
			return t, true
		}
	}
	return "", false
}

// AllActionTypes returns the vocabulary in a stable order
func AllActionTypes() []ActionType {
	out := make([]ActionType, 0, len(actions))
	for t := range actions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProtectedTypes are excluded from every bulk hide
var ProtectedTypes = []ActionType{ActionUndo}
