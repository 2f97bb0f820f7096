package types

import "fmt"

// ActionType defines the kind of request a user interface sends to a session.
type ActionType string

const (
	ActionTypeReload            ActionType = "reload"             // ActionTypeReload reloads the tab list.
	ActionTypeSearch            ActionType = "search"             // ActionTypeSearch filters the loaded tabs.
	ActionTypeDeduplicate       ActionType = "dedup"              // ActionTypeDeduplicate closes duplicate tabs.
	ActionTypeCloseUnbookmarked ActionType = "close-unbookmarked" // ActionTypeCloseUnbookmarked closes tabs that are not bookmarked.
	ActionTypeUndo              ActionType = "undo"               // ActionTypeUndo restores the last closed batch.
	ActionTypeList              ActionType = "list"               // ActionTypeList lists tabs without filtering.
)

// Action represents a user request.
type Action struct {
	// Metadata holds optional additional information about the action.
	Metadata map[string]interface{}

	// Query is the search text. Only used by ActionTypeSearch.
	Query string

	// Scope is "current" or "all".
	Scope string

	// Type indicates the kind of action.
	Type ActionType
}

// NewSearchAction creates a search action.
func NewSearchAction(scope, query string) *Action {
	return &Action{
		Type:     ActionTypeSearch,
		Scope:    scope,
		Query:    query,
		Metadata: make(map[string]interface{}),
	}
}

// NewScopedAction creates an action that only needs a scope.
func NewScopedAction(actionType ActionType, scope string) *Action {
	return &Action{
		Type:     actionType,
		Scope:    scope,
		Metadata: make(map[string]interface{}),
	}
}

// NewUndoAction creates an undo action.
func NewUndoAction() *Action {
	return &Action{
		Type:     ActionTypeUndo,
		Metadata: make(map[string]interface{}),
	}
}

// ParseActionType maps a command name onto an action type.
func ParseActionType(name string) (ActionType, error) {
	switch t := ActionType(name); t {
	case ActionTypeReload, ActionTypeSearch, ActionTypeDeduplicate,
		ActionTypeCloseUnbookmarked, ActionTypeUndo, ActionTypeList:
		return t, nil
	default:
		return "", fmt.Errorf("unknown command %q", name)
	}
}

// IsMutating returns true if the action closes or restores tabs.
func (a *Action) IsMutating() bool {
	return a.Type == ActionTypeDeduplicate ||
		a.Type == ActionTypeCloseUnbookmarked ||
		a.Type == ActionTypeUndo
}
