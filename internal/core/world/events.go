package world

// Channel names for the store's implicit lifecycle and change events.
// Lifecycle events carry the affected *Entity as payload; EventQueryChanged
// carries a query.Change value; EventTick carries the tick delta time.
const (
	// EventEntityAdded fires once per entity creation, after the entity is
	// in storage.
	EventEntityAdded = "entity.added"
	// EventEntityRemoved fires once per entity destruction, after the
	// entity left storage.
	EventEntityRemoved = "entity.removed"
	// EventEntityChanged fires on any in-place component mutation.
	EventEntityChanged = "entity.changed"
	// EventQueryChanged fires when a watched query's match set gains or
	// loses entities.
	EventQueryChanged = "query.changed"
	// EventTick fires at the start of every runner tick.
	EventTick = "tick"
	// EventStoreReplaced fires after a wholesale Import replaced the entity
	// list, e.g. on snapshot restore.
	EventStoreReplaced = "store.replaced"
)
